package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Order, error)
	FindByPaymentID(ctx context.Context, db *gorm.DB, providerPaymentID string) (*Order, error)

	MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkRefunded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
}
