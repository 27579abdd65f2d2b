package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// ExtractionRunRepository defines persistence operations for extraction runs.
type ExtractionRunRepository interface {
	// Claim inserts a pending run. It returns entities.ErrRunAlreadyPending
	// when another pending run exists for the same transcript.
	Claim(ctx context.Context, run *entities.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ExtractionRun, error)
	LatestByMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.ExtractionRun, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// InsightRepository defines persistence operations for extracted decisions,
// action items and risks.
type InsightRepository interface {
	// CommitRun atomically supersedes the meeting's previous insights,
	// inserts the new batch and marks the run succeeded. Either all of it
	// happens or none of it does.
	CommitRun(ctx context.Context, run *entities.ExtractionRun, decisions []*entities.Decision, actionItems []*entities.ActionItem, risks []*entities.Risk) error

	DecisionsByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Decision, error)
	ActionItemsByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ActionItem, error)
	RisksByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Risk, error)

	// RisksByAccountSince returns current risks across an account's meetings
	// created after the cutoff, excluding one meeting.
	RisksByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time, excludeMeetingID uuid.UUID) ([]*entities.Risk, error)

	GetActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)
	UpdateActionItem(ctx context.Context, item *entities.ActionItem) error

	// OutcomeCounts tallies current decisions and action items per meeting.
	OutcomeCounts(ctx context.Context, meetingIDs []uuid.UUID) (map[uuid.UUID]entities.OutcomeCount, error)
}
