package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, conversion *Conversion) error
	FindByBookingID(ctx context.Context, db *gorm.DB, bookingID uuid.UUID) ([]Conversion, error)

	// ConfirmWherePending flips pending conversions for a booking to
	// confirmed, setting confirmed_at in the same statement. Repeating
	// the call changes nothing.
	ConfirmWherePending(ctx context.Context, db *gorm.DB, bookingID uuid.UUID, now time.Time) (int64, error)

	Stats(ctx context.Context, db *gorm.DB, referrerID uuid.UUID) (Stats, error)
}
