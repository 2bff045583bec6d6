package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ?`, id,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, db *gorm.DB, providerPaymentID string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE payment_id = ?`, providerPaymentID,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.StatusConfirmed, domain.PaymentStatusPaid, now, id, domain.PaymentStatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkPaymentFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.PaymentStatusFailed, now, id, domain.PaymentStatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.StatusRefunded, domain.PaymentStatusRefunded, now, id, domain.PaymentStatusPaid,
	)
	return res.RowsAffected > 0, res.Error
}
