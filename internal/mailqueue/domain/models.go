package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is one queued outbound email. Lifecycle:
// pending -> processing -> sent, or back to pending with a backoff
// delay until RetryCount reaches the configured maximum, then failed.
type Item struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Recipient     string     `json:"recipient" gorm:"type:text;not null"`
	Subject       string     `json:"subject" gorm:"type:text;not null"`
	Body          string     `json:"body" gorm:"type:text;not null"`
	Status        string     `json:"status" gorm:"type:text;not null;default:'pending'"`
	RetryCount    int        `json:"retry_count" gorm:"not null;default:0"`
	LastError     *string    `json:"last_error,omitempty" gorm:"type:text"`
	NextAttemptAt time.Time  `json:"next_attempt_at" gorm:"not null"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Item) TableName() string { return "email_queue" }

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSent       = "sent"
	StatusFailed     = "failed"
)
