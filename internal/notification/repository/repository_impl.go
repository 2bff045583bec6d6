package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var items []domain.Notification
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
