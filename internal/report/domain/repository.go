package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, report *ScheduledReport) error
	FindDue(ctx context.Context, db *gorm.DB, now time.Time) ([]ScheduledReport, error)

	// Advance pushes next_run_at past now and bumps the run counter.
	// Called after every firing regardless of outcome.
	Advance(ctx context.Context, db *gorm.DB, id uuid.UUID, nextRunAt time.Time, now time.Time) error

	RecordExecution(ctx context.Context, db *gorm.DB, execution *Execution) error
	ListExecutions(ctx context.Context, db *gorm.DB, reportID uuid.UUID, limit int) ([]Execution, error)
}
