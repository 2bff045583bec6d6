package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversion records an attributable action (signup or paid booking)
// tied to a referring user. Confirmed status and ConfirmedAt are set
// together, only once the underlying booking's payment is confirmed.
type Conversion struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ReferrerID       uuid.UUID  `json:"referrer_id" gorm:"type:uuid;not null;index"`
	ReferredUserID   uuid.UUID  `json:"referred_user_id" gorm:"type:uuid;not null"`
	BookingID        *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Kind             string     `json:"kind" gorm:"type:text;not null"`
	Status           string     `json:"status" gorm:"type:text;not null;default:'pending'"`
	CommissionAmount int64      `json:"commission_amount" gorm:"not null;default:0"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Conversion) TableName() string { return "affiliate_conversions" }

const (
	KindSignup  = "signup"
	KindBooking = "booking"

	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Stats aggregates a referrer's conversions.
type Stats struct {
	TotalConversions     int   `json:"total_conversions"`
	ConfirmedConversions int   `json:"confirmed_conversions"`
	// TotalEarnings sums commission across every status, pending
	// included. Kept as the original system computes it; see
	// ConfirmedEarnings for the settled figure.
	TotalEarnings     int64 `json:"total_earnings"`
	ConfirmedEarnings int64 `json:"confirmed_earnings"`
}
