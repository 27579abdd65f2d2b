package entities

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertOverdueAction     AlertType = "overdue_action"
	AlertNeverAcknowledged AlertType = "never_acknowledged"
	AlertActionNoOwner     AlertType = "action_no_owner"
	AlertDecisionNoOwner   AlertType = "decision_no_owner"
	AlertRepeatedIssue     AlertType = "repeated_issue"
	AlertNoOutcomes        AlertType = "no_outcomes"
)

// Alert is a derived view over the current insights of a meeting. Alerts are
// recomputed on demand and cached; they are never a source of truth.
type Alert struct {
	Type         AlertType  `json:"type"`
	Severity     int        `json:"severity"`
	MeetingID    uuid.UUID  `json:"meeting_id"`
	ActionItemID *uuid.UUID `json:"action_item_id,omitempty"`
	Message      string     `json:"message"`
	DetectedAt   time.Time  `json:"detected_at"`
}

// alertSeverity orders alert types from most to least urgent. Higher numbers
// sort first.
var alertSeverity = map[AlertType]int{
	AlertOverdueAction:     50,
	AlertNeverAcknowledged: 40,
	AlertActionNoOwner:     30,
	AlertDecisionNoOwner:   20,
	AlertRepeatedIssue:     20,
	AlertNoOutcomes:        10,
}

func NewAlert(t AlertType, meetingID uuid.UUID, actionItemID *uuid.UUID, message string) Alert {
	return Alert{
		Type:         t,
		Severity:     alertSeverity[t],
		MeetingID:    meetingID,
		ActionItemID: actionItemID,
		Message:      message,
		DetectedAt:   time.Now(),
	}
}
