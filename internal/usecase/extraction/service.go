package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/domain/repositories"
	"github.com/meetingledger/ledger/pkg/jobcontext"
)

// AlertInvalidator drops cached alert views when a meeting's insights change.
type AlertInvalidator interface {
	InvalidateAlerts(ctx context.Context, meetingID uuid.UUID) error
}

// Service drives insight extraction runs over transcripts.
type Service interface {
	// Extract claims a run for the transcript and processes it to completion,
	// returning the terminal run.
	Extract(ctx context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error)
	// ExtractAsync claims a run and processes it in the background,
	// returning the pending run immediately.
	ExtractAsync(ctx context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*entities.ExtractionRun, error)
}

type service struct {
	transcriptRepo repositories.TranscriptRepository
	runRepo        repositories.ExtractionRunRepository
	insightRepo    repositories.InsightRepository
	extractor      Extractor
	alerts         AlertInvalidator
	minConfidence  float64
	timeout        time.Duration
	logger         *zap.Logger
}

// NewService creates the extraction service.
func NewService(
	transcriptRepo repositories.TranscriptRepository,
	runRepo repositories.ExtractionRunRepository,
	insightRepo repositories.InsightRepository,
	extractor Extractor,
	alerts AlertInvalidator,
	minConfidence float64,
	timeout time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		transcriptRepo: transcriptRepo,
		runRepo:        runRepo,
		insightRepo:    insightRepo,
		extractor:      extractor,
		alerts:         alerts,
		minConfidence:  minConfidence,
		timeout:        timeout,
		logger:         logger,
	}
}

func (s *service) Extract(ctx context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error) {
	run, transcript, err := s.claim(ctx, transcriptID)
	if err != nil {
		return nil, err
	}
	if err := s.process(ctx, run, transcript); err != nil {
		return run, err
	}
	return run, nil
}

func (s *service) ExtractAsync(ctx context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error) {
	run, transcript, err := s.claim(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	pending := *run

	go func() {
		// Detached from the request context: the run outlives the HTTP call.
		if err := s.process(context.Background(), run, transcript); err != nil {
			if s.logger != nil {
				s.logger.Error("❌ Background extraction run failed",
					zap.String("run_id", run.ID.String()),
					zap.Error(err),
				)
			}
		}
	}()

	return &pending, nil
}

func (s *service) GetRun(ctx context.Context, runID uuid.UUID) (*entities.ExtractionRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get extraction run", err)
	}
	if run == nil {
		return nil, apperrors.ErrNotFound("Extraction run")
	}
	return run, nil
}

// claim validates the transcript and atomically registers a pending run.
func (s *service) claim(ctx context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, *entities.Transcript, error) {
	transcript, err := s.transcriptRepo.GetByID(ctx, transcriptID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("get transcript", err)
	}
	if transcript == nil {
		return nil, nil, apperrors.ErrTranscriptNotFound(transcriptID.String())
	}
	if transcript.IsEmpty() {
		return nil, nil, apperrors.ErrInvalidTranscript("transcript has no extractable content")
	}

	run := entities.NewExtractionRun(transcript.ID, transcript.MeetingID)
	if err := s.runRepo.Claim(ctx, run); err != nil {
		if errors.Is(err, entities.ErrRunAlreadyPending) {
			return nil, nil, apperrors.ErrConcurrentExtraction(transcriptID.String())
		}
		return nil, nil, apperrors.ErrDBQueryFailed("claim extraction run", err)
	}

	if s.logger != nil {
		s.logger.Info("🚀 Extraction run claimed",
			zap.String("run_id", run.ID.String()),
			zap.String("transcript_id", transcript.ID.String()),
			zap.String("meeting_id", transcript.MeetingID.String()),
		)
	}
	return run, transcript, nil
}

// process runs the pipeline for a claimed run. Any failure releases the
// claim by marking the run failed; insights from earlier runs stay intact.
func (s *service) process(parentCtx context.Context, run *entities.ExtractionRun, transcript *entities.Transcript) error {
	ctx, cancel := jobcontext.Begin(parentCtx, run.ID, jobcontext.RunTypeExtraction, s.timeout)
	defer cancel()

	err := jobcontext.Execute(ctx, func(ctx context.Context) error {
		return s.runPipeline(ctx, run, transcript)
	})
	if err != nil {
		s.fail(run, err)
		return apperrors.ErrExtractionFailed(err)
	}

	if s.alerts != nil {
		if cacheErr := s.alerts.InvalidateAlerts(parentCtx, transcript.MeetingID); cacheErr != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to invalidate alert cache",
				zap.String("meeting_id", transcript.MeetingID.String()),
				zap.Error(cacheErr),
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("✅ Extraction run committed",
			zap.String("run_id", run.ID.String()),
			zap.Int("decisions", run.DecisionCount),
			zap.Int("action_items", run.ActionItemCount),
			zap.Int("risks", run.RiskCount),
		)
	}
	return nil
}

func (s *service) runPipeline(ctx context.Context, run *entities.ExtractionRun, transcript *entities.Transcript) error {
	sentences, err := SplitSentences(transcript)
	if err != nil {
		return fmt.Errorf("sentence segmentation: %w", err)
	}

	candidates, err := s.extractor.Extract(ctx, transcript.Content, sentences)
	if err != nil {
		return err
	}

	decisions, actionItems, risks := s.materialize(run, transcript, sentences, candidates)

	run.MarkSucceeded(s.extractor.Model(), len(decisions), len(actionItems), len(risks))
	if err := s.insightRepo.CommitRun(ctx, run, decisions, actionItems, risks); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// materialize filters candidates and converts the survivors into entities.
// Anchoring happens here: a source sentence that is not a verbatim substring
// of the transcript is dropped to nil rather than stored wrong.
func (s *service) materialize(
	run *entities.ExtractionRun,
	transcript *entities.Transcript,
	sentences []Sentence,
	candidates []Candidate,
) ([]*entities.Decision, []*entities.ActionItem, []*entities.Risk) {
	var (
		decisions   []*entities.Decision
		actionItems []*entities.ActionItem
		risks       []*entities.Risk
	)

	for i := range candidates {
		c := &candidates[i]
		if c.Confidence < s.minConfidence {
			continue
		}
		c.SourceSentence = anchorSentence(transcript.Content, c.SourceSentence)
		c.Owner = cleanName(c.Owner)

		switch c.Kind {
		case entities.ItemKindDecision:
			attributeOwner(c, sentences)
			decisions = append(decisions, entities.NewDecision(
				transcript.MeetingID, transcript.ID, run.ID,
				c.Text, c.Owner, c.SourceSentence, c.Confidence,
			))
		case entities.ItemKindActionItem:
			attributeOwner(c, sentences)
			actionItems = append(actionItems, entities.NewActionItem(
				transcript.MeetingID, transcript.ID, run.ID,
				c.Text, c.Owner, c.SourceSentence, parseDueDate(c.DueDate), c.Confidence,
			))
		case entities.ItemKindRisk:
			risks = append(risks, entities.NewRisk(
				transcript.MeetingID, transcript.ID, run.ID,
				c.Text, c.SourceSentence, c.Confidence,
			))
		}
	}
	return decisions, actionItems, risks
}

func (s *service) fail(run *entities.ExtractionRun, cause error) {
	// Best effort with a fresh context: the run context may already be dead.
	releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.runRepo.MarkFailed(releaseCtx, run.ID, cause.Error()); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to release extraction claim",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
	run.MarkFailed(cause.Error())
}

func parseDueDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil
	}
	return &t
}
