package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message. Inserts are best-effort side
// effects of payment processing and reminders; failures never block the
// primary transition.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Kind      string     `json:"kind" gorm:"type:text;not null"`
	Title     string     `json:"title" gorm:"type:text;not null"`
	Body      string     `json:"body" gorm:"type:text;not null;default:''"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Notification) TableName() string { return "notifications" }

const (
	KindPaymentReceived = "payment_received"
	KindPaymentFailed   = "payment_failed"
	KindRefundIssued    = "refund_issued"
	KindDispute         = "dispute"
	KindBookingReminder = "booking_reminder"
)
