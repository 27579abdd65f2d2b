package insight

// ExtractRequest starts an extraction run over a transcript.
type ExtractRequest struct {
	TranscriptID string `json:"transcript_id" validate:"required,uuid"`
	// Wait runs the extraction synchronously instead of in the background.
	Wait bool `json:"wait,omitempty"`
}
