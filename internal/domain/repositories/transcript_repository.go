package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// TranscriptRepository defines persistence operations for transcripts.
type TranscriptRepository interface {
	// Create stores a new transcript and marks any previous transcript of the
	// same meeting as superseded, in one transaction.
	Create(ctx context.Context, transcript *entities.Transcript) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error)
	// CurrentByMeeting returns the meeting's non-superseded transcript, or
	// nil when none has been uploaded.
	CurrentByMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error)
}
