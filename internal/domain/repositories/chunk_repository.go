package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// ChunkRepository defines persistence operations for the per-account vector
// index of transcript chunks.
type ChunkRepository interface {
	// ReplaceForMeeting swaps a meeting's chunks for the given batch in one
	// transaction. Searches running concurrently see either the old set or
	// the new set, never a mix.
	ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, chunks []*entities.Chunk) error

	// Search returns the topK most similar chunks for the account, ordered
	// by similarity descending with ties broken by most recent meeting.
	Search(ctx context.Context, accountID uuid.UUID, embedding []float32, topK int) ([]entities.ChunkHit, error)

	Stats(ctx context.Context, accountID uuid.UUID) (*entities.IndexStats, error)
	DeleteForMeeting(ctx context.Context, meetingID uuid.UUID) error
}
