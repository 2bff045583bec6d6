package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	articleservice "github.com/nakmuayhub/platform/internal/article/service"
	bookingdomain "github.com/nakmuayhub/platform/internal/booking/domain"
	"github.com/nakmuayhub/platform/internal/clock"
	mailqueueservice "github.com/nakmuayhub/platform/internal/mailqueue/service"
	notificationdomain "github.com/nakmuayhub/platform/internal/notification/domain"
	"github.com/nakmuayhub/platform/internal/observability/metrics"
	reportservice "github.com/nakmuayhub/platform/internal/report/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Task names are the keys of Result.Tasks and the metric labels.
const (
	TaskMailQueue         = "mailQueue"
	TaskBookingReminders  = "bookingReminders"
	TaskScheduledArticles = "scheduledArticles"
	TaskScheduledReports  = "scheduledReports"
)

// reminderHour is the single hour-of-day slot at which booking
// reminders go out. The reminders task only joins a run whose
// invocation time falls exactly on this slot.
const reminderHour = 9

type TaskResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

type Result struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Timestamp time.Time             `json:"timestamp"`
	Tasks     map[string]TaskResult `json:"tasks"`
}

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	Clock            clock.Clock
	MailQueue        *mailqueueservice.Service
	Articles         *articleservice.Service
	Reports          *reportservice.Service
	BookingRepo      bookingdomain.Repository
	NotificationRepo notificationdomain.Repository
}

// Dispatcher runs every periodic maintenance task in one invocation.
// Tasks are isolated: a panicking or failing task is reported in its
// slot of the result and never prevents the remaining tasks from
// running.
type Dispatcher struct {
	db               *gorm.DB
	log              *zap.Logger
	clock            clock.Clock
	mailQueue        *mailqueueservice.Service
	articles         *articleservice.Service
	reports          *reportservice.Service
	bookingRepo      bookingdomain.Repository
	notificationRepo notificationdomain.Repository
}

func New(p Params) *Dispatcher {
	return &Dispatcher{
		db:               p.DB,
		log:              p.Log.Named("dispatcher"),
		clock:            p.Clock,
		mailQueue:        p.MailQueue,
		articles:         p.Articles,
		reports:          p.Reports,
		bookingRepo:      p.BookingRepo,
		notificationRepo: p.NotificationRepo,
	}
}

// Run executes all tasks due at the current tick and returns the
// per-task outcome. The bookingReminders key is present only when the
// invocation lands on the reminder slot; all other keys appear on
// every run.
func (d *Dispatcher) Run(ctx context.Context) *Result {
	now := d.clock.Now()
	result := &Result{
		Success:   true,
		Timestamp: now,
		Tasks:     map[string]TaskResult{},
	}

	d.runTask(ctx, result, TaskMailQueue, func(ctx context.Context) (int, error) {
		return d.mailQueue.Drain(ctx, now)
	})
	if now.Hour() == reminderHour && now.Minute() == 0 {
		d.runTask(ctx, result, TaskBookingReminders, func(ctx context.Context) (int, error) {
			return d.sendBookingReminders(ctx, now)
		})
	}
	d.runTask(ctx, result, TaskScheduledArticles, func(ctx context.Context) (int, error) {
		return d.articles.PublishDue(ctx, now)
	})
	d.runTask(ctx, result, TaskScheduledReports, func(ctx context.Context) (int, error) {
		return d.reports.ProcessDue(ctx, now)
	})

	failed := 0
	for _, task := range result.Tasks {
		if !task.Success {
			failed++
		}
	}
	if failed > 0 {
		result.Success = false
		result.Message = fmt.Sprintf("%d of %d tasks failed", failed, len(result.Tasks))
	} else {
		result.Message = fmt.Sprintf("%d tasks completed", len(result.Tasks))
	}
	return result
}

func (d *Dispatcher) runTask(ctx context.Context, result *Result, name string, fn func(ctx context.Context) (int, error)) {
	m := metrics.Tasks()
	m.IncRun(name)
	started := time.Now()

	count, err := func() (count int, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(ctx)
	}()

	m.ObserveDuration(name, time.Since(started))
	if err != nil {
		m.IncError(name)
		d.log.Error("task failed", zap.String("task", name), zap.Error(err))
		result.Tasks[name] = TaskResult{Success: false, Count: count, Error: err.Error()}
		return
	}
	m.AddProcessed(name, count)
	d.log.Info("task completed", zap.String("task", name), zap.Int("count", count))
	result.Tasks[name] = TaskResult{Success: true, Count: count}
}

// sendBookingReminders enqueues a reminder email and an in-app
// notification for every confirmed booking starting tomorrow. The
// window is the full calendar day after the invocation day.
func (d *Dispatcher) sendBookingReminders(ctx context.Context, now time.Time) (int, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	bookings, err := d.bookingRepo.ListConfirmedStartingBetween(ctx, d.db, from, to)
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, booking := range bookings {
		subject := "Reminder: your session is tomorrow"
		body := fmt.Sprintf("<p>Your booking starts at %s. See you there.</p>",
			booking.StartsAt.Format("15:04, 2 Jan 2006"))
		if err := d.mailQueue.Enqueue(ctx, booking.UserEmail, subject, body, now); err != nil {
			d.log.Warn("enqueue booking reminder",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
			continue
		}
		if err := d.notificationRepo.Insert(ctx, d.db, &notificationdomain.Notification{
			ID:        uuid.New(),
			UserID:    booking.UserID,
			Kind:      notificationdomain.KindBookingReminder,
			Title:     "Session tomorrow",
			Body:      fmt.Sprintf("Your booking starts at %s.", booking.StartsAt.Format("15:04")),
			CreatedAt: now,
		}); err != nil {
			d.log.Warn("insert reminder notification",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
		reminded++
	}
	return reminded, nil
}
