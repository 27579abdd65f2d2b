package entities

import "errors"

// Sentinel errors shared between repositories and usecases. The HTTP layer
// maps these onto the application error taxonomy.
var (
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrRunNotFound        = errors.New("extraction run not found")
	ErrActionItemNotFound = errors.New("action item not found")
	ErrEmptyTranscript    = errors.New("transcript has no extractable content")
	ErrRunAlreadyPending  = errors.New("an extraction run is already pending for this transcript")
	ErrIndexEmpty         = errors.New("no indexed transcripts for this account")
)
