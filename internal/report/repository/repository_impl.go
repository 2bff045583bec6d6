package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, report *domain.ScheduledReport) error {
	return db.WithContext(ctx).Create(report).Error
}

func (r *repo) FindDue(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.ScheduledReport, error) {
	var items []domain.ScheduledReport
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM scheduled_reports
		 WHERE active = ? AND next_run_at <= ?
		 ORDER BY next_run_at ASC`,
		true, now,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Advance(ctx context.Context, db *gorm.DB, id uuid.UUID, nextRunAt time.Time, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE scheduled_reports
		 SET next_run_at = ?, run_count = run_count + 1, updated_at = ?
		 WHERE id = ?`,
		nextRunAt, now, id,
	).Error
}

func (r *repo) RecordExecution(ctx context.Context, db *gorm.DB, execution *domain.Execution) error {
	return db.WithContext(ctx).Create(execution).Error
}

func (r *repo) ListExecutions(ctx context.Context, db *gorm.DB, reportID uuid.UUID, limit int) ([]domain.Execution, error) {
	if limit <= 0 {
		limit = 20
	}
	var items []domain.Execution
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM scheduled_report_executions
		 WHERE report_id = ?
		 ORDER BY started_at DESC
		 LIMIT ?`,
		reportID, limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
