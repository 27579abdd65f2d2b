package entities

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind discriminates the three extracted insight types.
type ItemKind string

const (
	ItemKindDecision   ItemKind = "decision"
	ItemKindActionItem ItemKind = "action_item"
	ItemKindRisk       ItemKind = "risk"
)

// Insight carries the fields shared by every extracted item. SourceSentence
// is nil unless the sentence is a verbatim substring of the transcript it was
// extracted from. Confidence is always within [0, 1].
type Insight struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID      uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	TranscriptID   uuid.UUID `json:"transcript_id" gorm:"type:uuid;not null"`
	RunID          uuid.UUID `json:"run_id" gorm:"type:uuid;not null;index"`
	Text           string    `json:"text" gorm:"type:text;not null"`
	SourceSentence *string   `json:"source_sentence,omitempty" gorm:"type:text"`
	Confidence     float64   `json:"confidence" gorm:"not null;default:0"`
	Superseded     bool      `json:"superseded" gorm:"not null;default:false;index"`
	CreatedAt      time.Time `json:"created_at"`
}

func newInsight(meetingID, transcriptID, runID uuid.UUID, text string, source *string, confidence float64) Insight {
	return Insight{
		ID:             uuid.New(),
		MeetingID:      meetingID,
		TranscriptID:   transcriptID,
		RunID:          runID,
		Text:           text,
		SourceSentence: source,
		Confidence:     clampConfidence(confidence),
		CreatedAt:      time.Now(),
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Decision records something the meeting settled on. Owner is optional.
type Decision struct {
	Insight `gorm:"embedded"`
	Owner   *string `json:"owner,omitempty" gorm:"type:varchar(255)"`
}

func (Decision) TableName() string {
	return "decisions"
}

func NewDecision(meetingID, transcriptID, runID uuid.UUID, text string, owner, source *string, confidence float64) *Decision {
	return &Decision{
		Insight: newInsight(meetingID, transcriptID, runID, text, source, confidence),
		Owner:   owner,
	}
}

type ActionItemStatus string

const (
	ActionItemStatusOpen ActionItemStatus = "open"
	ActionItemStatusDone ActionItemStatus = "done"
)

// ActionItem is a follow-up commitment. It carries its own lifecycle: an item
// starts open, can be completed and reopened, and records the first time a
// human acknowledged it.
type ActionItem struct {
	Insight        `gorm:"embedded"`
	Owner          *string          `json:"owner,omitempty" gorm:"type:varchar(255)"`
	Status         ActionItemStatus `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	AcknowledgedAt *time.Time       `json:"acknowledged_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

func (ActionItem) TableName() string {
	return "action_items"
}

func NewActionItem(meetingID, transcriptID, runID uuid.UUID, text string, owner, source *string, dueDate *time.Time, confidence float64) *ActionItem {
	return &ActionItem{
		Insight: newInsight(meetingID, transcriptID, runID, text, source, confidence),
		Owner:   owner,
		Status:  ActionItemStatusOpen,
		DueDate: dueDate,
	}
}

func (a *ActionItem) HasOwner() bool {
	return a.Owner != nil && *a.Owner != ""
}

// MarkDone completes the item. Completing an already-done item is a no-op.
func (a *ActionItem) MarkDone() bool {
	if a.Status == ActionItemStatusDone {
		return false
	}
	now := time.Now()
	a.Status = ActionItemStatusDone
	a.CompletedAt = &now
	return true
}

// Reopen puts a completed item back into the open state.
func (a *ActionItem) Reopen() bool {
	if a.Status == ActionItemStatusOpen {
		return false
	}
	a.Status = ActionItemStatusOpen
	a.CompletedAt = nil
	return true
}

// Acknowledge records the first acknowledgement timestamp. Subsequent calls
// keep the original timestamp and report no change.
func (a *ActionItem) Acknowledge() bool {
	if a.AcknowledgedAt != nil {
		return false
	}
	now := time.Now()
	a.AcknowledgedAt = &now
	return true
}

// IsOverdue reports whether the item is open past its explicit due date,
// or has sat open and unacknowledged longer than the grace period. An
// acknowledged item without a due date is considered on someone's plate.
func (a *ActionItem) IsOverdue(now time.Time, grace time.Duration) bool {
	if a.Status != ActionItemStatusOpen {
		return false
	}
	if a.DueDate != nil {
		return now.After(*a.DueDate)
	}
	return a.AcknowledgedAt == nil && now.Sub(a.CreatedAt) > grace
}

// Risk flags a concern or blocker raised during the meeting.
type Risk struct {
	Insight `gorm:"embedded"`
}

func (Risk) TableName() string {
	return "risks"
}

func NewRisk(meetingID, transcriptID, runID uuid.UUID, text string, source *string, confidence float64) *Risk {
	return &Risk{
		Insight: newInsight(meetingID, transcriptID, runID, text, source, confidence),
	}
}
