package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meetings.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.Meeting, error)
	ListByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*entities.Meeting, error)
}
