package entities

import (
	"time"

	"github.com/google/uuid"
)

type ExtractionRunStatus string

const (
	ExtractionRunStatusPending   ExtractionRunStatus = "pending"
	ExtractionRunStatusSucceeded ExtractionRunStatus = "succeeded"
	ExtractionRunStatusFailed    ExtractionRunStatus = "failed"
)

// ExtractionRun tracks one extraction attempt over a transcript. At most one
// pending run may exist per transcript at a time; the database enforces this
// with a partial unique index, which is what makes concurrent extraction
// requests mutually exclusive across processes.
type ExtractionRun struct {
	ID              uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	TranscriptID    uuid.UUID           `json:"transcript_id" gorm:"type:uuid;not null;index"`
	MeetingID       uuid.UUID           `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Status          ExtractionRunStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Model           string              `json:"model" gorm:"type:varchar(100)"`
	DecisionCount   int                 `json:"decision_count" gorm:"not null;default:0"`
	ActionItemCount int                 `json:"action_item_count" gorm:"not null;default:0"`
	RiskCount       int                 `json:"risk_count" gorm:"not null;default:0"`
	LastError       *string             `json:"last_error,omitempty" gorm:"type:text"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
}

func (ExtractionRun) TableName() string {
	return "extraction_runs"
}

func NewExtractionRun(transcriptID, meetingID uuid.UUID) *ExtractionRun {
	return &ExtractionRun{
		ID:           uuid.New(),
		TranscriptID: transcriptID,
		MeetingID:    meetingID,
		Status:       ExtractionRunStatusPending,
		StartedAt:    time.Now(),
	}
}

func (r *ExtractionRun) MarkSucceeded(model string, decisions, actionItems, risks int) {
	now := time.Now()
	r.Status = ExtractionRunStatusSucceeded
	r.Model = model
	r.DecisionCount = decisions
	r.ActionItemCount = actionItems
	r.RiskCount = risks
	r.CompletedAt = &now
	r.LastError = nil
}

func (r *ExtractionRun) MarkFailed(reason string) {
	now := time.Now()
	r.Status = ExtractionRunStatusFailed
	r.CompletedAt = &now
	r.LastError = &reason
}

func (r *ExtractionRun) IsTerminal() bool {
	return r.Status == ExtractionRunStatusSucceeded || r.Status == ExtractionRunStatusFailed
}
