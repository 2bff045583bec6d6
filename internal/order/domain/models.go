package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a shop purchase (gear, merchandise). Same paired
// status/payment_status discipline as bookings.
type Order struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	UserEmail     string    `json:"user_email" gorm:"type:text;not null"`
	PaymentID     *string   `json:"payment_id,omitempty" gorm:"type:text;index"`
	Status        string    `json:"status" gorm:"type:text;not null;default:'pending'"`
	PaymentStatus string    `json:"payment_status" gorm:"type:text;not null;default:'pending'"`
	Total         int64     `json:"total" gorm:"not null;default:0"`
	Currency      string    `json:"currency" gorm:"type:text;not null;default:'THB'"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

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
