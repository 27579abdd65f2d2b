package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// ChunkRepository handles the pgvector-backed transcript chunk index
type ChunkRepository struct {
	db *gorm.DB
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForMeeting swaps the meeting's chunks inside one transaction so
// concurrent searches never see a half-replaced index.
func (r *ChunkRepository) ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, chunks []*entities.Chunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("meeting_id = ?", meetingID).Delete(&entities.Chunk{}).Error
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.CreateInBatches(chunks, 200).Error
	})
}

// Search runs a cosine similarity query over the account's chunks. Scores are
// 1 - cosine distance, so higher means closer; equal scores fall back to the
// most recently started meeting.
func (r *ChunkRepository) Search(ctx context.Context, accountID uuid.UUID, embedding []float32, topK int) ([]entities.ChunkHit, error) {
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}
	vec := pgvector.NewVector(embedding)

	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.account_id, c.meeting_id, c.transcript_id, c.position, c.text, c.created_at,
		       m.title, m.started_at,
		       1 - (c.embedding <=> ?) AS score
		FROM transcript_chunks c
		JOIN meetings m ON m.id = c.meeting_id
		WHERE c.account_id = ?
		ORDER BY c.embedding <=> ? ASC, m.started_at DESC
		LIMIT ?`, vec, accountID, vec, topK).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []entities.ChunkHit
	for rows.Next() {
		var hit entities.ChunkHit
		err := rows.Scan(
			&hit.Chunk.ID, &hit.Chunk.AccountID, &hit.Chunk.MeetingID, &hit.Chunk.TranscriptID,
			&hit.Chunk.Position, &hit.Chunk.Text, &hit.Chunk.CreatedAt,
			&hit.MeetingTitle, &hit.MeetingStarted, &hit.Score,
		)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (r *ChunkRepository) Stats(ctx context.Context, accountID uuid.UUID) (*entities.IndexStats, error) {
	var stats entities.IndexStats
	err := r.db.WithContext(ctx).
		Model(&entities.Chunk{}).
		Where("account_id = ?", accountID).
		Count(&stats.TotalChunks).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&entities.Chunk{}).
		Where("account_id = ?", accountID).
		Distinct("meeting_id").
		Count(&stats.IndexedMeetings).Error
	if err != nil {
		return nil, err
	}
	stats.Indexed = stats.TotalChunks > 0

	if stats.TotalChunks > 0 {
		var last time.Time
		err = r.db.WithContext(ctx).
			Model(&entities.Chunk{}).
			Where("account_id = ?", accountID).
			Select("MAX(created_at)").
			Scan(&last).Error
		if err != nil {
			return nil, err
		}
		stats.LastIndexedAt = &last
	}
	return &stats, nil
}

func (r *ChunkRepository) DeleteForMeeting(ctx context.Context, meetingID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&entities.Chunk{}).Error
}
