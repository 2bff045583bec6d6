package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a gym session reservation. Status and PaymentStatus move
// together: a booking is confirmed only when its payment is reported
// paid, and both transitions are expressed as conditional updates so
// webhook redeliveries are no-ops.
type Booking struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GymID         uuid.UUID `json:"gym_id" gorm:"type:uuid;not null"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	UserEmail     string    `json:"user_email" gorm:"type:text;not null"`
	PaymentID     *string   `json:"payment_id,omitempty" gorm:"type:text;index"`
	Status        string    `json:"status" gorm:"type:text;not null;default:'pending'"`
	PaymentStatus string    `json:"payment_status" gorm:"type:text;not null;default:'pending'"`
	Amount        int64     `json:"amount" gorm:"not null;default:0"`
	Currency      string    `json:"currency" gorm:"type:text;not null;default:'THB'"`
	StartsAt      time.Time `json:"starts_at" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Booking) TableName() string { return "bookings" }

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)
