package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/domain/repositories"
	"github.com/meetingledger/ledger/pkg/ai"
	"github.com/meetingledger/ledger/pkg/config"
	"github.com/meetingledger/ledger/pkg/jobcontext"
)

// Source is one retrieved snippet backing an answer.
type Source struct {
	MeetingID      uuid.UUID `json:"meeting_id"`
	MeetingTitle   string    `json:"meeting_title"`
	MeetingStarted time.Time `json:"meeting_started"`
	Snippet        string    `json:"snippet"`
	Score          float64   `json:"score"`
}

// QueryResult is a synthesized answer with its supporting sources. When
// synthesis fails after successful retrieval, Sources are still populated
// and SynthesisError carries the reason; retrieval and synthesis fail
// independently.
type QueryResult struct {
	Answer         string   `json:"answer"`
	Model          string   `json:"model"`
	Sources        []Source `json:"sources"`
	SynthesisError string   `json:"synthesis_error,omitempty"`
}

// StreamResult carries retrieved sources plus a live answer stream.
type StreamResult struct {
	Sources []Source
	Model   string
	Chunks  <-chan ai.StreamChunk
}

// IndexAllReport summarizes a bulk reindex.
type IndexAllReport struct {
	Indexed int         `json:"indexed"`
	Skipped int         `json:"skipped"`
	Failed  []uuid.UUID `json:"failed,omitempty"`
}

// Service is the retrieval-augmented question answering engine.
type Service interface {
	IndexMeeting(ctx context.Context, meetingID uuid.UUID) (int, error)
	IndexAll(ctx context.Context, accountID uuid.UUID) (*IndexAllReport, error)
	Search(ctx context.Context, accountID uuid.UUID, query string, topK int) ([]entities.ChunkHit, error)
	// Query and StreamAnswer take an optional per-request backend choice:
	// nil keeps the configured default, true forces the local model,
	// false the remote one.
	Query(ctx context.Context, accountID uuid.UUID, question string, topK int, useLocal *bool) (*QueryResult, error)
	StreamAnswer(ctx context.Context, accountID uuid.UUID, question string, topK int, useLocal *bool) (*StreamResult, error)
	Stats(ctx context.Context, accountID uuid.UUID) (*entities.IndexStats, error)
}

type service struct {
	meetingRepo    repositories.MeetingRepository
	transcriptRepo repositories.TranscriptRepository
	chunkRepo      repositories.ChunkRepository
	embedder       ai.Embedder
	remote         ai.Generator
	local          ai.Generator
	cfg            config.RAGConfig
	logger         *zap.Logger
}

// NewService creates the retrieval service. Either generator may be nil when
// that backend is not configured; requests asking for a missing backend fall
// back to the other one.
func NewService(
	meetingRepo repositories.MeetingRepository,
	transcriptRepo repositories.TranscriptRepository,
	chunkRepo repositories.ChunkRepository,
	embedder ai.Embedder,
	remote ai.Generator,
	local ai.Generator,
	cfg config.RAGConfig,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo:    meetingRepo,
		transcriptRepo: transcriptRepo,
		chunkRepo:      chunkRepo,
		embedder:       embedder,
		remote:         remote,
		local:          local,
		cfg:            cfg,
		logger:         logger,
	}
}

// pickGenerator resolves the synthesis backend for one request. A nil
// preference keeps the configured default.
func (s *service) pickGenerator(useLocal *bool) ai.Generator {
	wantLocal := s.cfg.Synthesizer == "ollama"
	if useLocal != nil {
		wantLocal = *useLocal
	}
	if wantLocal {
		if s.local != nil {
			return s.local
		}
		return s.remote
	}
	if s.remote != nil {
		return s.remote
	}
	return s.local
}

// IndexMeeting chunks and embeds the meeting's current transcript, then swaps
// the meeting's chunks atomically. On any failure the previous index state
// is untouched.
func (s *service) IndexMeeting(ctx context.Context, meetingID uuid.UUID) (int, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return 0, apperrors.ErrNotFound("Meeting")
	}
	transcript, err := s.transcriptRepo.CurrentByMeeting(ctx, meetingID)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("get current transcript", err)
	}
	if transcript == nil {
		return 0, apperrors.ErrInvalidArgument("meeting has no transcript to index")
	}

	runCtx, cancel := jobcontext.Begin(ctx, uuid.New(), jobcontext.RunTypeIndexing, 5*time.Minute)
	defer cancel()

	texts := ChunkWords(transcript.Content, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(texts) == 0 {
		return 0, apperrors.ErrInvalidArgument("transcript has no indexable content")
	}

	vectors, err := s.embedBatch(runCtx, texts)
	if err != nil {
		return 0, apperrors.ErrIndexingFailed(meetingID.String(), err)
	}

	chunks := make([]*entities.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = entities.NewChunk(meeting.AccountID, meeting.ID, transcript.ID, i, text, vectors[i])
	}
	if err := s.chunkRepo.ReplaceForMeeting(runCtx, meetingID, chunks); err != nil {
		return 0, apperrors.ErrIndexingFailed(meetingID.String(), err)
	}

	if s.logger != nil {
		s.logger.Info("📚 Meeting indexed",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("chunks", len(chunks)),
		)
	}
	return len(chunks), nil
}

// IndexAll reindexes every meeting of an account with bounded concurrency.
// Meetings without transcripts are skipped; individual failures are reported
// without aborting the rest.
func (s *service) IndexAll(ctx context.Context, accountID uuid.UUID) (*IndexAllReport, error) {
	meetings, err := s.meetingRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list meetings", err)
	}

	var (
		mu     sync.Mutex
		report IndexAllReport
	)

	g, groupCtx := errgroup.WithContext(ctx)
	limit := s.cfg.IndexConcurrent
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for _, meeting := range meetings {
		meeting := meeting
		g.Go(func() error {
			_, err := s.IndexMeeting(groupCtx, meeting.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Indexed++
			case isMissingTranscript(err):
				report.Skipped++
			default:
				report.Failed = append(report.Failed, meeting.ID)
				if s.logger != nil {
					s.logger.Error("❌ Failed to index meeting",
						zap.String("meeting_id", meeting.ID.String()),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}

func isMissingTranscript(err error) bool {
	appErr, ok := err.(apperrors.AppError)
	return ok && appErr.Code == apperrors.ErrorCode_INVALID_ARGUMENT
}

func (s *service) Search(ctx context.Context, accountID uuid.UUID, query string, topK int) ([]entities.ChunkHit, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	stats, err := s.chunkRepo.Stats(ctx, accountID)
	if err != nil {
		return nil, apperrors.ErrRetrievalUnavailable(err)
	}
	if stats.TotalChunks == 0 {
		return nil, apperrors.ErrRetrievalUnavailable(entities.ErrIndexEmpty)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.ErrRetrievalUnavailable(fmt.Errorf("embed query: %w", err))
	}
	hits, err := s.chunkRepo.Search(ctx, accountID, vector, topK)
	if err != nil {
		return nil, apperrors.ErrRetrievalUnavailable(fmt.Errorf("vector search: %w", err))
	}
	return hits, nil
}

const answerSystemPrompt = `You answer questions about a team's past meetings.
Use ONLY the provided meeting excerpts. If they do not contain the answer,
say so. Mention which meeting an answer comes from when that is useful.`

// Query retrieves the most relevant chunks and synthesizes an answer.
// Retrieval failure returns an error; synthesis failure still returns the
// sources so callers can degrade to raw excerpts.
func (s *service) Query(ctx context.Context, accountID uuid.UUID, question string, topK int, useLocal *bool) (*QueryResult, error) {
	hits, err := s.Search(ctx, accountID, question, topK)
	if err != nil {
		return nil, err
	}

	generator := s.pickGenerator(useLocal)
	if generator == nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("no synthesis backend configured"))
	}

	result := &QueryResult{
		Model:   generator.Model(),
		Sources: toSources(hits),
	}
	if len(hits) == 0 {
		result.Answer = "No indexed meeting content matched the question."
		return result, nil
	}

	answer, err := generator.Generate(ctx, answerSystemPrompt, buildAnswerPrompt(question, hits))
	if err != nil {
		result.SynthesisError = apperrors.ErrSynthesisFailed(err).Error()
		if s.logger != nil {
			s.logger.Error("❌ Answer synthesis failed",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
		}
		return result, nil
	}
	result.Answer = answer
	return result, nil
}

// StreamAnswer is Query with a streamed answer. Sources are resolved before
// the stream starts so they are available immediately.
func (s *service) StreamAnswer(ctx context.Context, accountID uuid.UUID, question string, topK int, useLocal *bool) (*StreamResult, error) {
	hits, err := s.Search(ctx, accountID, question, topK)
	if err != nil {
		return nil, err
	}

	generator := s.pickGenerator(useLocal)
	if generator == nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("no synthesis backend configured"))
	}

	chunks, err := generator.Stream(ctx, answerSystemPrompt, buildAnswerPrompt(question, hits))
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(err)
	}
	return &StreamResult{
		Sources: toSources(hits),
		Model:   generator.Model(),
		Chunks:  chunks,
	}, nil
}

func (s *service) Stats(ctx context.Context, accountID uuid.UUID) (*entities.IndexStats, error) {
	stats, err := s.chunkRepo.Stats(ctx, accountID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("index stats", err)
	}
	stats.Indexed = stats.TotalChunks > 0
	return stats, nil
}

func (s *service) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	callFn := func() error {
		var err error
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	bo.MaxInterval = 10 * time.Second

	if err := backoff.Retry(callFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}
	return vectors, nil
}

func toSources(hits []entities.ChunkHit) []Source {
	sources := make([]Source, len(hits))
	for i, hit := range hits {
		sources[i] = Source{
			MeetingID:      hit.Chunk.MeetingID,
			MeetingTitle:   hit.MeetingTitle,
			MeetingStarted: hit.MeetingStarted,
			Snippet:        hit.Chunk.Text,
			Score:          hit.Score,
		}
	}
	return sources
}

func buildAnswerPrompt(question string, hits []entities.ChunkHit) string {
	var b strings.Builder
	b.WriteString("Meeting excerpts:\n\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n",
			i+1, hit.MeetingTitle, hit.MeetingStarted.Format("2006-01-02"), hit.Chunk.Text)
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
