package entities

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is the anchor record every transcript, insight and chunk hangs off.
type Meeting struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	StartedAt time.Time `json:"started_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Meeting) TableName() string {
	return "meetings"
}

func NewMeeting(accountID uuid.UUID, title string, startedAt time.Time) *Meeting {
	now := time.Now()
	if startedAt.IsZero() {
		startedAt = now
	}
	return &Meeting{
		ID:        uuid.New(),
		AccountID: accountID,
		Title:     title,
		StartedAt: startedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
