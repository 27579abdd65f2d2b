package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// InsightRepository handles decision, action item and risk data operations
type InsightRepository struct {
	db *gorm.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// CommitRun replaces the meeting's current insights with the new batch and
// finalizes the run, all in one transaction. The run row is updated with a
// status guard so a claim that was already released cannot be committed.
func (r *InsightRepository) CommitRun(ctx context.Context, run *entities.ExtractionRun, decisions []*entities.Decision, actionItems []*entities.ActionItem, risks []*entities.Risk) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&entities.Decision{}, &entities.ActionItem{}, &entities.Risk{}} {
			err := tx.Model(model).
				Where("meeting_id = ? AND superseded = false", run.MeetingID).
				Update("superseded", true).Error
			if err != nil {
				return err
			}
		}
		if len(decisions) > 0 {
			if err := tx.CreateInBatches(decisions, 100).Error; err != nil {
				return err
			}
		}
		if len(actionItems) > 0 {
			if err := tx.CreateInBatches(actionItems, 100).Error; err != nil {
				return err
			}
		}
		if len(risks) > 0 {
			if err := tx.CreateInBatches(risks, 100).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&entities.ExtractionRun{}).
			Where("id = ? AND status = ?", run.ID, entities.ExtractionRunStatusPending).
			Updates(map[string]interface{}{
				"status":            run.Status,
				"model":             run.Model,
				"decision_count":    run.DecisionCount,
				"action_item_count": run.ActionItemCount,
				"risk_count":        run.RiskCount,
				"completed_at":      run.CompletedAt,
				"last_error":        nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entities.ErrRunNotFound
		}
		return nil
	})
}

func (r *InsightRepository) DecisionsByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Decision, error) {
	var decisions []*entities.Decision
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND superseded = false", meetingID).
		Order("created_at ASC").
		Find(&decisions).Error
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

func (r *InsightRepository) ActionItemsByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ActionItem, error) {
	var items []*entities.ActionItem
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND superseded = false", meetingID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *InsightRepository) RisksByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Risk, error) {
	var risks []*entities.Risk
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND superseded = false", meetingID).
		Order("created_at ASC").
		Find(&risks).Error
	if err != nil {
		return nil, err
	}
	return risks, nil
}

func (r *InsightRepository) RisksByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time, excludeMeetingID uuid.UUID) ([]*entities.Risk, error) {
	var risks []*entities.Risk
	err := r.db.WithContext(ctx).
		Joins("JOIN meetings ON meetings.id = risks.meeting_id").
		Where("meetings.account_id = ?", accountID).
		Where("risks.meeting_id <> ?", excludeMeetingID).
		Where("risks.superseded = false AND risks.created_at >= ?", since).
		Find(&risks).Error
	if err != nil {
		return nil, err
	}
	return risks, nil
}

func (r *InsightRepository) GetActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	var item entities.ActionItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *InsightRepository) UpdateActionItem(ctx context.Context, item *entities.ActionItem) error {
	if item == nil {
		return errors.New("action item cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.ActionItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":          item.Status,
			"owner":           item.Owner,
			"due_date":        item.DueDate,
			"acknowledged_at": item.AcknowledgedAt,
			"completed_at":    item.CompletedAt,
		}).Error
}

// OutcomeCounts tallies current decisions and action items for each meeting.
func (r *InsightRepository) OutcomeCounts(ctx context.Context, meetingIDs []uuid.UUID) (map[uuid.UUID]entities.OutcomeCount, error) {
	counts := make(map[uuid.UUID]entities.OutcomeCount, len(meetingIDs))
	if len(meetingIDs) == 0 {
		return counts, nil
	}

	type row struct {
		MeetingID uuid.UUID
		Total     int
		Owned     int
	}

	var decisionRows []row
	err := r.db.WithContext(ctx).
		Model(&entities.Decision{}).
		Select("meeting_id, COUNT(*) AS total").
		Where("meeting_id IN ? AND superseded = false", meetingIDs).
		Group("meeting_id").
		Scan(&decisionRows).Error
	if err != nil {
		return nil, err
	}
	for _, dr := range decisionRows {
		c := counts[dr.MeetingID]
		c.Decisions = dr.Total
		counts[dr.MeetingID] = c
	}

	var actionRows []row
	err = r.db.WithContext(ctx).
		Model(&entities.ActionItem{}).
		Select("meeting_id, COUNT(*) AS total, COUNT(owner) AS owned").
		Where("meeting_id IN ? AND superseded = false", meetingIDs).
		Group("meeting_id").
		Scan(&actionRows).Error
	if err != nil {
		return nil, err
	}
	for _, ar := range actionRows {
		c := counts[ar.MeetingID]
		c.ActionItems = ar.Total
		c.OwnedActions = ar.Owned
		counts[ar.MeetingID] = c
	}
	return counts, nil
}
