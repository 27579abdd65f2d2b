package meetings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/domain/repositories"
)

// Archiver stores raw transcript copies outside the database.
type Archiver interface {
	Put(ctx context.Context, meetingID, transcriptID uuid.UUID, content string) error
}

// MeetingView is the joined read model for one meeting: its current
// transcript, current insights and latest extraction run.
type MeetingView struct {
	Meeting     *entities.Meeting       `json:"meeting"`
	Transcript  *entities.Transcript    `json:"transcript,omitempty"`
	Decisions   []*entities.Decision    `json:"decisions"`
	ActionItems []*entities.ActionItem  `json:"action_items"`
	Risks       []*entities.Risk        `json:"risks"`
	LatestRun   *entities.ExtractionRun `json:"latest_run,omitempty"`
}

// Service manages meetings and their transcripts.
type Service interface {
	CreateMeeting(ctx context.Context, accountID uuid.UUID, title string, startedAt time.Time) (*entities.Meeting, error)
	UploadTranscript(ctx context.Context, meetingID uuid.UUID, content string) (*entities.Transcript, error)
	GetMeetingView(ctx context.Context, meetingID uuid.UUID) (*MeetingView, error)
	ListMeetings(ctx context.Context, accountID uuid.UUID) ([]*entities.Meeting, error)
}

type service struct {
	meetingRepo    repositories.MeetingRepository
	transcriptRepo repositories.TranscriptRepository
	insightRepo    repositories.InsightRepository
	runRepo        repositories.ExtractionRunRepository
	archive        Archiver
	logger         *zap.Logger
}

// NewService creates the meeting service.
func NewService(
	meetingRepo repositories.MeetingRepository,
	transcriptRepo repositories.TranscriptRepository,
	insightRepo repositories.InsightRepository,
	runRepo repositories.ExtractionRunRepository,
	archive Archiver,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo:    meetingRepo,
		transcriptRepo: transcriptRepo,
		insightRepo:    insightRepo,
		runRepo:        runRepo,
		archive:        archive,
		logger:         logger,
	}
}

func (s *service) CreateMeeting(ctx context.Context, accountID uuid.UUID, title string, startedAt time.Time) (*entities.Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrInvalidArgument("meeting title must not be empty")
	}

	meeting := entities.NewMeeting(accountID, title, startedAt)
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create meeting", err)
	}

	if s.logger != nil {
		s.logger.Info("📝 Meeting created",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("account_id", accountID.String()),
		)
	}
	return meeting, nil
}

// UploadTranscript stores a new transcript for the meeting, superseding any
// previous one. The raw content is archived best effort; the database copy
// is the working one.
func (s *service) UploadTranscript(ctx context.Context, meetingID uuid.UUID, content string) (*entities.Transcript, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrInvalidTranscript("content is empty or whitespace only")
	}

	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrNotFound("Meeting")
	}

	transcript := entities.NewTranscript(meetingID, content)
	if err := s.transcriptRepo.Create(ctx, transcript); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create transcript", err)
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, meetingID, transcript.ID, content); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to archive transcript copy",
				zap.String("transcript_id", transcript.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("📄 Transcript uploaded",
			zap.String("meeting_id", meetingID.String()),
			zap.String("transcript_id", transcript.ID.String()),
			zap.Int("word_count", transcript.WordCount),
		)
	}
	return transcript, nil
}

func (s *service) GetMeetingView(ctx context.Context, meetingID uuid.UUID) (*MeetingView, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrNotFound("Meeting")
	}

	view := &MeetingView{
		Meeting:     meeting,
		Decisions:   []*entities.Decision{},
		ActionItems: []*entities.ActionItem{},
		Risks:       []*entities.Risk{},
	}

	if view.Transcript, err = s.transcriptRepo.CurrentByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("get current transcript", err)
	}
	if view.Decisions, err = s.insightRepo.DecisionsByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list decisions", err)
	}
	if view.ActionItems, err = s.insightRepo.ActionItemsByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list action items", err)
	}
	if view.Risks, err = s.insightRepo.RisksByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list risks", err)
	}
	if view.LatestRun, err = s.runRepo.LatestByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("latest extraction run", err)
	}
	return view, nil
}

func (s *service) ListMeetings(ctx context.Context, accountID uuid.UUID) ([]*entities.Meeting, error) {
	meetings, err := s.meetingRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list meetings", err)
	}
	return meetings, nil
}
