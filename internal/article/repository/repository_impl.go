package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/article/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, article *domain.Article) error {
	return db.WithContext(ctx).Create(article).Error
}

func (r *repo) FindScheduledDue(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Article, error) {
	var items []domain.Article
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM articles
		 WHERE status = ? AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= ?
		 ORDER BY scheduled_publish_at ASC`,
		domain.StatusDraft, now,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Publish(ctx context.Context, db *gorm.DB, id uuid.UUID, slug string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE articles
		 SET status = ?, slug = ?, published_at = ?, scheduled_publish_at = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusPublished, slug, now, now, id, domain.StatusDraft,
	)
	return res.RowsAffected > 0, res.Error
}
