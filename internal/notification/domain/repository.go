package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	ListForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]Notification, error)
}
