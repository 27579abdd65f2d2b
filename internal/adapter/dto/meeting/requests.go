package meeting

import "time"

// CreateMeetingRequest creates a meeting in the caller's account.
type CreateMeetingRequest struct {
	Title     string     `json:"title" validate:"required,notblank,max=255"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// UploadTranscriptRequest attaches a transcript to a meeting, superseding
// any previous transcript.
type UploadTranscriptRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}
