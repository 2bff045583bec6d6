package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent stores the dedup record for a delivery. Returns false
	// when a record for the same provider event already exists.
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	MarkEventProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error

	FindByProviderPaymentID(ctx context.Context, db *gorm.DB, providerPaymentID string) (*Payment, error)

	// SetStatus transitions a payment conditionally on its current
	// status being one of from. Returns whether a row changed.
	SetStatus(ctx context.Context, db *gorm.DB, providerPaymentID string, from []string, to string, failureCode *string, now time.Time) (bool, error)
}
