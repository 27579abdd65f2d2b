package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/domain/repositories"
	"github.com/meetingledger/ledger/internal/infrastructure/cache"
	"github.com/meetingledger/ledger/pkg/config"
)

// Service exposes derived views (alerts, metrics) and the action item
// lifecycle. Alerts and metrics are always recomputed from current insights;
// the cache only short-circuits repeat reads.
type Service interface {
	Alerts(ctx context.Context, meetingID uuid.UUID) ([]entities.Alert, error)
	InvalidateAlerts(ctx context.Context, meetingID uuid.UUID) error

	MeetingMetrics(ctx context.Context, meetingID uuid.UUID) (*entities.MeetingMetrics, error)
	WeeklyMetrics(ctx context.Context, accountID uuid.UUID, weeks int) ([]entities.WeeklyMetric, error)

	CompleteActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)
	ReopenActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)
	AcknowledgeActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)
}

type service struct {
	meetingRepo repositories.MeetingRepository
	insightRepo repositories.InsightRepository
	runRepo     repositories.ExtractionRunRepository
	store       cache.Store
	alertsCfg   config.AlertsConfig
	scoringCfg  config.ScoringConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates the insights service.
func NewService(
	meetingRepo repositories.MeetingRepository,
	insightRepo repositories.InsightRepository,
	runRepo repositories.ExtractionRunRepository,
	store cache.Store,
	alertsCfg config.AlertsConfig,
	scoringCfg config.ScoringConfig,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo: meetingRepo,
		insightRepo: insightRepo,
		runRepo:     runRepo,
		store:       store,
		alertsCfg:   alertsCfg,
		scoringCfg:  scoringCfg,
		logger:      logger,
		now:         time.Now,
	}
}

func alertCacheKey(meetingID uuid.UUID) string {
	return fmt.Sprintf("alerts:%s", meetingID)
}

func (s *service) Alerts(ctx context.Context, meetingID uuid.UUID) ([]entities.Alert, error) {
	if s.store != nil {
		if cached, ok, err := s.store.Get(ctx, alertCacheKey(meetingID)); err == nil && ok {
			var alerts []entities.Alert
			if err := json.Unmarshal([]byte(cached), &alerts); err == nil {
				return alerts, nil
			}
		}
	}

	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrNotFound("Meeting")
	}

	in := alertInputs{meeting: meeting}
	if in.decisions, err = s.insightRepo.DecisionsByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list decisions", err)
	}
	if in.actionItems, err = s.insightRepo.ActionItemsByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list action items", err)
	}
	if in.risks, err = s.insightRepo.RisksByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list risks", err)
	}
	if in.latestRun, err = s.runRepo.LatestByMeeting(ctx, meetingID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("latest extraction run", err)
	}
	if len(in.risks) > 0 {
		cutoff := s.now().Add(-s.alertsCfg.RepeatedLookback)
		in.historicRisks, err = s.insightRepo.RisksByAccountSince(ctx, meeting.AccountID, cutoff, meetingID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("list historic risks", err)
		}
	}

	alerts := computeAlerts(s.now(), s.alertsCfg, in)

	if s.store != nil {
		if payload, err := json.Marshal(alerts); err == nil {
			if err := s.store.Set(ctx, alertCacheKey(meetingID), string(payload), s.alertsCfg.CacheTTL); err != nil && s.logger != nil {
				s.logger.Warn("⚠️ Failed to cache alerts",
					zap.String("meeting_id", meetingID.String()),
					zap.Error(err),
				)
			}
		}
	}
	return alerts, nil
}

func (s *service) InvalidateAlerts(ctx context.Context, meetingID uuid.UUID) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, alertCacheKey(meetingID))
}

func (s *service) MeetingMetrics(ctx context.Context, meetingID uuid.UUID) (*entities.MeetingMetrics, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrNotFound("Meeting")
	}

	decisions, err := s.insightRepo.DecisionsByMeeting(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list decisions", err)
	}
	actionItems, err := s.insightRepo.ActionItemsByMeeting(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list action items", err)
	}

	owned, unowned := 0, 0
	for _, item := range actionItems {
		if item.HasOwner() {
			owned++
		} else {
			unowned++
		}
	}

	score := Score(s.scoringCfg, len(decisions), owned, unowned)
	metrics := &entities.MeetingMetrics{
		MeetingID:           meetingID,
		Decisions:           len(decisions),
		ActionItems:         len(actionItems),
		ActionsWithOwner:    owned,
		ActionsWithoutOwner: unowned,
		HasOutcomes:         len(decisions)+len(actionItems) > 0,
		ProductivityScore:   score,
		Classification:      Classify(s.scoringCfg, score),
		AvgFollowupHours:    avgFollowupHours(actionItems),
	}
	return metrics, nil
}

// avgFollowupHours averages the open-to-done latency of completed items.
func avgFollowupHours(items []*entities.ActionItem) *float64 {
	total, count := 0.0, 0
	for _, item := range items {
		if item.CompletedAt != nil {
			total += item.CompletedAt.Sub(item.CreatedAt).Hours()
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

func (s *service) WeeklyMetrics(ctx context.Context, accountID uuid.UUID, weeks int) ([]entities.WeeklyMetric, error) {
	if weeks <= 0 {
		weeks = 4
	}
	now := s.now().UTC()
	currentWeek := weekStart(now)
	oldestWeek := currentWeek.AddDate(0, 0, -7*(weeks-1))

	meetings, err := s.meetingRepo.ListByAccountSince(ctx, accountID, oldestWeek)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list meetings", err)
	}

	meetingIDs := make([]uuid.UUID, 0, len(meetings))
	for _, m := range meetings {
		meetingIDs = append(meetingIDs, m.ID)
	}
	counts, err := s.insightRepo.OutcomeCounts(ctx, meetingIDs)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("outcome counts", err)
	}

	// One bucket per week, oldest first, empty weeks included.
	buckets := make([]entities.WeeklyMetric, weeks)
	index := make(map[time.Time]int, weeks)
	for i := 0; i < weeks; i++ {
		start := oldestWeek.AddDate(0, 0, 7*i)
		buckets[i] = entities.WeeklyMetric{WeekStart: start}
		index[start] = i
	}

	scoreTotals := make([]float64, weeks)
	for _, m := range meetings {
		i, ok := index[weekStart(m.StartedAt.UTC())]
		if !ok {
			continue
		}
		c := counts[m.ID]
		buckets[i].Meetings++
		buckets[i].Decisions += c.Decisions
		buckets[i].ActionItems += c.ActionItems
		scoreTotals[i] += Score(s.scoringCfg, c.Decisions, c.OwnedActions, c.ActionItems-c.OwnedActions)
	}
	for i := range buckets {
		if buckets[i].Meetings > 0 {
			buckets[i].AvgProductivity = scoreTotals[i] / float64(buckets[i].Meetings)
		}
	}
	return buckets, nil
}

// weekStart truncates a time to the Monday midnight of its week, in UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the prior Monday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func (s *service) CompleteActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	return s.mutateActionItem(ctx, id, func(item *entities.ActionItem) bool {
		return item.MarkDone()
	})
}

func (s *service) ReopenActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	return s.mutateActionItem(ctx, id, func(item *entities.ActionItem) bool {
		return item.Reopen()
	})
}

func (s *service) AcknowledgeActionItem(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	return s.mutateActionItem(ctx, id, func(item *entities.ActionItem) bool {
		return item.Acknowledge()
	})
}

// mutateActionItem applies a lifecycle transition. Transitions are idempotent
// at the entity level; an unchanged item skips the write but still returns
// the current state.
func (s *service) mutateActionItem(ctx context.Context, id uuid.UUID, apply func(*entities.ActionItem) bool) (*entities.ActionItem, error) {
	item, err := s.insightRepo.GetActionItem(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get action item", err)
	}
	if item == nil {
		return nil, apperrors.ErrNotFound("Action item")
	}

	if !apply(item) {
		return item, nil
	}

	if err := s.insightRepo.UpdateActionItem(ctx, item); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update action item", err)
	}
	if err := s.InvalidateAlerts(ctx, item.MeetingID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to invalidate alert cache",
			zap.String("meeting_id", item.MeetingID.String()),
			zap.Error(err),
		)
	}
	return item, nil
}
