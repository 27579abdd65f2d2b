package entities

import (
	"time"

	"github.com/google/uuid"
)

type MeetingClassification string

const (
	ClassificationProductive   MeetingClassification = "productive"
	ClassificationNeedsFollow  MeetingClassification = "needs_follow_up"
	ClassificationUnproductive MeetingClassification = "unproductive"
)

// MeetingMetrics is the computed productivity snapshot for a single meeting.
type MeetingMetrics struct {
	MeetingID           uuid.UUID             `json:"meeting_id"`
	Decisions           int                   `json:"decisions"`
	ActionItems         int                   `json:"action_items"`
	ActionsWithOwner    int                   `json:"actions_with_owner"`
	ActionsWithoutOwner int                   `json:"actions_without_owner"`
	HasOutcomes         bool                  `json:"has_outcomes"`
	ProductivityScore   float64               `json:"productivity_score"`
	Classification      MeetingClassification `json:"classification"`
	AvgFollowupHours    *float64              `json:"avg_followup_hours,omitempty"`
}

// WeeklyMetric aggregates meeting outcomes for one calendar week. WeekStart
// is the Monday of the bucket, truncated to midnight UTC.
type WeeklyMetric struct {
	WeekStart       time.Time `json:"week_start"`
	Meetings        int       `json:"meetings"`
	Decisions       int       `json:"decisions"`
	ActionItems     int       `json:"action_items"`
	AvgProductivity float64   `json:"avg_productivity"`
}

// OutcomeCount is the per-meeting tally used by weekly aggregation.
type OutcomeCount struct {
	Decisions    int
	ActionItems  int
	OwnedActions int
}
