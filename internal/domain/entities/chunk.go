package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk is one embedded window of a transcript. Chunks for a meeting are
// replaced atomically whenever the meeting is re-indexed, so readers never
// observe a mix of old and new chunks.
type Chunk struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;index"`
	MeetingID    uuid.UUID       `json:"meeting_id" gorm:"type:uuid;not null;index"`
	TranscriptID uuid.UUID       `json:"transcript_id" gorm:"type:uuid;not null"`
	Position     int             `json:"position" gorm:"not null"`
	Text         string          `json:"text" gorm:"type:text;not null"`
	Embedding    pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Chunk) TableName() string {
	return "transcript_chunks"
}

func NewChunk(accountID, meetingID, transcriptID uuid.UUID, position int, text string, embedding []float32) *Chunk {
	return &Chunk{
		ID:           uuid.New(),
		AccountID:    accountID,
		MeetingID:    meetingID,
		TranscriptID: transcriptID,
		Position:     position,
		Text:         text,
		Embedding:    pgvector.NewVector(embedding),
		CreatedAt:    time.Now(),
	}
}

// ChunkHit is one retrieval result: the chunk plus its meeting context and a
// similarity score in [0, 1], higher meaning more relevant.
type ChunkHit struct {
	Chunk          Chunk     `json:"chunk"`
	MeetingTitle   string    `json:"meeting_title"`
	MeetingStarted time.Time `json:"meeting_started"`
	Score          float64   `json:"score"`
}

// IndexStats summarizes the vector index for one account. Indexed flips to
// true once the first chunk lands and back to false only if the index is
// emptied.
type IndexStats struct {
	TotalChunks     int64      `json:"total_chunks"`
	IndexedMeetings int64      `json:"indexed_meetings"`
	Indexed         bool       `json:"indexed"`
	LastIndexedAt   *time.Time `json:"last_indexed_at,omitempty"`
}
