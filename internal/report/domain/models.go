package domain

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

const (
	ReportTypeBookings = "bookings"
	ReportTypeRevenue  = "revenue"
)

// Schedule is the per-frequency firing configuration. Unused fields are
// ignored for the given frequency (a daily report reads only hour and
// minute).
type Schedule struct {
	Hour       int `json:"hour" gorm:"column:schedule_hour;not null;default:8"`
	Minute     int `json:"minute" gorm:"column:schedule_minute;not null;default:0"`
	DayOfWeek  int `json:"day_of_week" gorm:"column:schedule_day_of_week;not null;default:1"`
	DayOfMonth int `json:"day_of_month" gorm:"column:schedule_day_of_month;not null;default:1"`
	Month      int `json:"month" gorm:"column:schedule_month;not null;default:1"`
}

// ScheduledReport fires whenever next_run_at passes. NextRunAt is
// always advanced strictly past now after a firing, success or failure,
// so a late dispatcher can never trigger a tight re-fire loop.
type ScheduledReport struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	ReportType string    `json:"report_type" gorm:"type:text;not null"`
	Format     string    `json:"format" gorm:"type:text;not null;default:'csv'"`
	Frequency  Frequency `json:"frequency" gorm:"type:text;not null"`
	Schedule   Schedule  `json:"schedule" gorm:"embedded"`
	Recipients string    `json:"recipients" gorm:"type:text;not null;default:''"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	NextRunAt  time.Time `json:"next_run_at" gorm:"not null"`
	RunCount   int       `json:"run_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ScheduledReport) TableName() string { return "scheduled_reports" }

// Execution records the outcome of one firing.
type Execution struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ReportID   uuid.UUID `json:"report_id" gorm:"type:uuid;not null;index"`
	Status     string    `json:"status" gorm:"type:text;not null"`
	Error      *string   `json:"error,omitempty" gorm:"type:text"`
	StartedAt  time.Time `json:"started_at" gorm:"not null"`
	FinishedAt time.Time `json:"finished_at" gorm:"not null"`
}

func (Execution) TableName() string { return "scheduled_report_executions" }

const (
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
)
