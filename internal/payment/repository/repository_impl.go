package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nakmuayhub/platform/internal/payment/domain"
	"github.com/nakmuayhub/platform/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, conn *gorm.DB, event *domain.EventRecord) (bool, error) {
	err := conn.WithContext(ctx).Create(event).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) FindEvent(ctx context.Context, conn *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	var record domain.EventRecord
	err := conn.WithContext(ctx).Raw(
		`SELECT * FROM payment_events WHERE provider = ? AND provider_event_id = ?`,
		provider, providerEventID,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) MarkEventProcessed(ctx context.Context, conn *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE payment_events SET processed_at = ? WHERE id = ? AND processed_at IS NULL`,
		processedAt, id,
	).Error
}

func (r *repo) FindByProviderPaymentID(ctx context.Context, conn *gorm.DB, providerPaymentID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := conn.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE provider_payment_id = ?`,
		providerPaymentID,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) SetStatus(ctx context.Context, conn *gorm.DB, providerPaymentID string, from []string, to string, failureCode *string, now time.Time) (bool, error) {
	res := conn.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, failure_code = ?, updated_at = ?
		 WHERE provider_payment_id = ? AND status IN ?`,
		to, failureCode, now, providerPaymentID, from,
	)
	return res.RowsAffected > 0, res.Error
}
