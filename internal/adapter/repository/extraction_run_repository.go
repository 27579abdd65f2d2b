package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// ExtractionRunRepository handles extraction run data operations
type ExtractionRunRepository struct {
	db *gorm.DB
}

// NewExtractionRunRepository creates a new extraction run repository
func NewExtractionRunRepository(db *gorm.DB) *ExtractionRunRepository {
	return &ExtractionRunRepository{db: db}
}

// Claim inserts a pending run. A partial unique index on
// (transcript_id) WHERE status = 'pending' rejects the insert when another
// pending run exists, which is what makes the claim atomic across processes.
func (r *ExtractionRunRepository) Claim(ctx context.Context, run *entities.ExtractionRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.ErrRunAlreadyPending
		}
		return err
	}
	return nil
}

func (r *ExtractionRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ExtractionRun, error) {
	var run entities.ExtractionRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *ExtractionRunRepository) LatestByMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.ExtractionRun, error) {
	var run entities.ExtractionRun
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// MarkFailed releases a pending claim. Only pending runs can transition to
// failed; marking anything else is a no-op.
func (r *ExtractionRunRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionRun{}).
		Where("id = ? AND status = ?", id, entities.ExtractionRunStatusPending).
		Updates(map[string]interface{}{
			"status":       entities.ExtractionRunStatusFailed,
			"last_error":   reason,
			"completed_at": gorm.Expr("NOW()"),
		}).Error
}
