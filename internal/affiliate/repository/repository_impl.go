package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/affiliate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, conversion *domain.Conversion) error {
	return db.WithContext(ctx).Create(conversion).Error
}

func (r *repo) FindByBookingID(ctx context.Context, db *gorm.DB, bookingID uuid.UUID) ([]domain.Conversion, error) {
	var items []domain.Conversion
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM affiliate_conversions WHERE booking_id = ? ORDER BY created_at ASC`,
		bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ConfirmWherePending(ctx context.Context, db *gorm.DB, bookingID uuid.UUID, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE affiliate_conversions
		 SET status = ?, confirmed_at = ?
		 WHERE booking_id = ? AND status = ?`,
		domain.StatusConfirmed, now, bookingID, domain.StatusPending,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, referrerID uuid.UUID) (domain.Stats, error) {
	var row struct {
		TotalConversions     int
		ConfirmedConversions int
		TotalEarnings        int64
		ConfirmedEarnings    int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
		   COUNT(*) AS total_conversions,
		   COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS confirmed_conversions,
		   COALESCE(SUM(commission_amount), 0) AS total_earnings,
		   COALESCE(SUM(CASE WHEN status = ? THEN commission_amount ELSE 0 END), 0) AS confirmed_earnings
		 FROM affiliate_conversions
		 WHERE referrer_id = ?`,
		domain.StatusConfirmed, domain.StatusConfirmed, referrerID,
	).Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{
		TotalConversions:     row.TotalConversions,
		ConfirmedConversions: row.ConfirmedConversions,
		TotalEarnings:        row.TotalEarnings,
		ConfirmedEarnings:    row.ConfirmedEarnings,
	}, nil
}
