package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, article *Article) error
	FindScheduledDue(ctx context.Context, db *gorm.DB, now time.Time) ([]Article, error)

	// Publish flips a due article to published and clears the scheduled
	// timestamp, conditional on it still being an unpublished scheduled
	// row.
	Publish(ctx context.Context, db *gorm.DB, id uuid.UUID, slug string, now time.Time) (bool, error)
}
