package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Booking, error)
	FindByPaymentID(ctx context.Context, db *gorm.DB, providerPaymentID string) (*Booking, error)

	// Conditional transitions. The bool result reports whether a row
	// actually changed; a false on redelivery is the expected no-op.
	MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkCancelled(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkRefunded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)

	ListConfirmedStartingBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Booking, error)
}
