package meeting

import (
	"time"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// MeetingResponse is the wire shape of a meeting.
type MeetingResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
	CreatedAt time.Time `json:"created_at"`
}

// MeetingViewResponse is a meeting with its current transcript and the
// outcomes extracted from it.
type MeetingViewResponse struct {
	Meeting     *MeetingResponse        `json:"meeting"`
	Transcript  *TranscriptResponse     `json:"transcript,omitempty"`
	Decisions   []*entities.Decision    `json:"decisions"`
	ActionItems []*entities.ActionItem  `json:"action_items"`
	Risks       []*entities.Risk        `json:"risks"`
	LatestRun   *entities.ExtractionRun `json:"latest_run,omitempty"`
}

// TranscriptResponse exposes transcript metadata without the full content.
type TranscriptResponse struct {
	ID        string    `json:"id"`
	MeetingID string    `json:"meeting_id"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// MeetingListResponse wraps a meeting list with its count.
type MeetingListResponse struct {
	Meetings []*MeetingResponse `json:"meetings"`
	Total    int                `json:"total"`
}
