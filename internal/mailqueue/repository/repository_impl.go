package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/mailqueue/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Enqueue(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindPending(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM email_queue
		 WHERE status = ? AND next_attempt_at <= ?
		 ORDER BY next_attempt_at ASC
		 LIMIT ?`,
		domain.StatusPending, now, limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkProcessing(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE email_queue SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.StatusProcessing, now, id, domain.StatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE email_queue SET status = ?, sent_at = ?, updated_at = ? WHERE id = ?`,
		domain.StatusSent, now, now, id,
	).Error
}

func (r *repo) Requeue(ctx context.Context, db *gorm.DB, id uuid.UUID, retryCount int, nextAttemptAt time.Time, sendErr string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE email_queue
		 SET status = ?, retry_count = ?, next_attempt_at = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusPending, retryCount, nextAttemptAt, sendErr, now, id,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, retryCount int, sendErr string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE email_queue
		 SET status = ?, retry_count = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusFailed, retryCount, sendErr, now, id,
	).Error
}
