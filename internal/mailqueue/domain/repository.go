package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Enqueue(ctx context.Context, db *gorm.DB, item *Item) error
	FindPending(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Item, error)

	// MarkProcessing claims an item before delivery. The claim is
	// conditional on the item still being pending, which is the only
	// (best effort) guard against overlapping dispatcher runs.
	MarkProcessing(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	MarkSent(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) error
	Requeue(ctx context.Context, db *gorm.DB, id uuid.UUID, retryCount int, nextAttemptAt time.Time, sendErr string, now time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, retryCount int, sendErr string, now time.Time) error
}
