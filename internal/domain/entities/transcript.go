package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transcript holds the normalized text of one meeting upload. Re-uploading a
// transcript for the same meeting supersedes the previous one; insights and
// chunks always derive from the current transcript.
type Transcript struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID  uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	WordCount  int       `json:"word_count" gorm:"not null;default:0"`
	Superseded bool      `json:"superseded" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript normalizes line endings and strips surrounding whitespace so
// that sentence anchoring works on a stable representation.
func NewTranscript(meetingID uuid.UUID, content string) *Transcript {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.TrimSpace(normalized)
	return &Transcript{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Content:   normalized,
		WordCount: len(strings.Fields(normalized)),
		CreatedAt: time.Now(),
	}
}

// IsEmpty reports whether the transcript has no extractable text.
func (t *Transcript) IsEmpty() bool {
	return strings.TrimSpace(t.Content) == ""
}

// Lines returns the transcript split into its non-empty lines.
func (t *Transcript) Lines() []string {
	raw := strings.Split(t.Content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
