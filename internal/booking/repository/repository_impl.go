package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bookings WHERE id = ?`, id,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == uuid.Nil {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, db *gorm.DB, providerPaymentID string) (*domain.Booking, error) {
	var b domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bookings WHERE payment_id = ?`, providerPaymentID,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == uuid.Nil {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.StatusConfirmed, domain.PaymentStatusPaid, now, id, domain.PaymentStatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkPaymentFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.PaymentStatusFailed, now, id, domain.PaymentStatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkCancelled(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusCancelled, now, id, domain.StatusPending,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.StatusRefunded, domain.PaymentStatusRefunded, now, id, domain.PaymentStatusPaid,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) ListConfirmedStartingBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.Booking, error) {
	var items []domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bookings
		 WHERE status = ? AND starts_at >= ? AND starts_at < ?
		 ORDER BY starts_at ASC`,
		domain.StatusConfirmed, from, to,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
