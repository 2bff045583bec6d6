package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	articledomain "github.com/nakmuayhub/platform/internal/article/domain"
	articlerepository "github.com/nakmuayhub/platform/internal/article/repository"
	articleservice "github.com/nakmuayhub/platform/internal/article/service"
	bookingdomain "github.com/nakmuayhub/platform/internal/booking/domain"
	bookingrepository "github.com/nakmuayhub/platform/internal/booking/repository"
	"github.com/nakmuayhub/platform/internal/clock"
	"github.com/nakmuayhub/platform/internal/config"
	mailqueuedomain "github.com/nakmuayhub/platform/internal/mailqueue/domain"
	mailqueuerepository "github.com/nakmuayhub/platform/internal/mailqueue/repository"
	mailqueueservice "github.com/nakmuayhub/platform/internal/mailqueue/service"
	notificationdomain "github.com/nakmuayhub/platform/internal/notification/domain"
	notificationrepository "github.com/nakmuayhub/platform/internal/notification/repository"
	"github.com/nakmuayhub/platform/internal/providers/email"
	"github.com/nakmuayhub/platform/internal/providers/pdf"
	reportdomain "github.com/nakmuayhub/platform/internal/report/domain"
	reportrepository "github.com/nakmuayhub/platform/internal/report/repository"
	reportservice "github.com/nakmuayhub/platform/internal/report/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func allModels() []interface{} {
	return []interface{}{
		&bookingdomain.Booking{},
		&notificationdomain.Notification{},
		&mailqueuedomain.Item{},
		&articledomain.Article{},
		&reportdomain.ScheduledReport{},
		&reportdomain.Execution{},
	}
}

func newTestDispatcher(t *testing.T, db *gorm.DB, now time.Time) (*Dispatcher, *clock.FakeClock) {
	t.Helper()
	log := zap.NewNop()
	fake := clock.NewFakeClock(now)
	bookingRepo := bookingrepository.Provide()

	mq := mailqueueservice.New(mailqueueservice.Params{
		DB:       db,
		Log:      log,
		Repo:     mailqueuerepository.Provide(),
		Provider: &email.NoOpProvider{},
		Cfg:      config.Config{},
	})
	articles := articleservice.New(articleservice.Params{
		DB:   db,
		Log:  log,
		Repo: articlerepository.Provide(),
	})
	reports := reportservice.New(reportservice.Params{
		DB:          db,
		Log:         log,
		Repo:        reportrepository.Provide(),
		BookingRepo: bookingRepo,
		PDF:         &pdf.NoOpProvider{},
		Email:       &email.NoOpProvider{},
	})

	d := New(Params{
		DB:               db,
		Log:              log,
		Clock:            fake,
		MailQueue:        mq,
		Articles:         articles,
		Reports:          reports,
		BookingRepo:      bookingRepo,
		NotificationRepo: notificationrepository.Provide(),
	})
	return d, fake
}

func seedConfirmedBooking(t *testing.T, db *gorm.DB, startsAt time.Time) bookingdomain.Booking {
	t.Helper()
	booking := bookingdomain.Booking{
		ID:            uuid.New(),
		GymID:         uuid.New(),
		UserID:        uuid.New(),
		UserEmail:     "fighter@example.com",
		Status:        bookingdomain.StatusConfirmed,
		PaymentStatus: bookingdomain.PaymentStatusPaid,
		Amount:        150000,
		Currency:      "THB",
		StartsAt:      startsAt,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func TestRunAtReminderSlot(t *testing.T) {
	nineAM := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	db := newTestDB(t, allModels()...)
	d, _ := newTestDispatcher(t, db, nineAM)

	tomorrow := seedConfirmedBooking(t, db, nineAM.Add(26*time.Hour))
	// outside tomorrow's window in both directions
	seedConfirmedBooking(t, db, nineAM.Add(2*time.Hour))
	seedConfirmedBooking(t, db, nineAM.Add(72*time.Hour))

	result := d.Run(context.Background())
	require.True(t, result.Success)
	require.Equal(t, nineAM, result.Timestamp)

	require.Contains(t, result.Tasks, TaskMailQueue)
	require.Contains(t, result.Tasks, TaskBookingReminders)
	require.Contains(t, result.Tasks, TaskScheduledArticles)
	require.Contains(t, result.Tasks, TaskScheduledReports)

	reminders := result.Tasks[TaskBookingReminders]
	require.True(t, reminders.Success)
	require.Equal(t, 1, reminders.Count)

	var queued int64
	require.NoError(t, db.Table("email_queue").Where("recipient = ?", tomorrow.UserEmail).Count(&queued).Error)
	require.EqualValues(t, 1, queued)

	var notified int64
	require.NoError(t, db.Table("notifications").
		Where("user_id = ? AND kind = ?", tomorrow.UserID, notificationdomain.KindBookingReminder).
		Count(&notified).Error)
	require.EqualValues(t, 1, notified)
}

func TestRunOffSlotOmitsReminders(t *testing.T) {
	db := newTestDB(t, allModels()...)
	d, fake := newTestDispatcher(t, db, time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC))
	seedConfirmedBooking(t, db, time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC))

	for _, at := range []time.Time{
		time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 8, 59, 0, 0, time.UTC),
	} {
		t.Run(at.Format("15:04"), func(t *testing.T) {
			fake.Set(at)

			result := d.Run(context.Background())
			require.True(t, result.Success)
			require.NotContains(t, result.Tasks, TaskBookingReminders)
			require.Contains(t, result.Tasks, TaskMailQueue)
			require.Contains(t, result.Tasks, TaskScheduledArticles)
			require.Contains(t, result.Tasks, TaskScheduledReports)
		})
	}
}

func TestRunEntersReminderSlotAfterAdvance(t *testing.T) {
	db := newTestDB(t, allModels()...)
	d, fake := newTestDispatcher(t, db, time.Date(2025, 6, 10, 8, 59, 0, 0, time.UTC))
	seedConfirmedBooking(t, db, time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC))

	result := d.Run(context.Background())
	require.NotContains(t, result.Tasks, TaskBookingReminders)

	fake.Advance(time.Minute)

	result = d.Run(context.Background())
	require.Contains(t, result.Tasks, TaskBookingReminders)
	require.Equal(t, 1, result.Tasks[TaskBookingReminders].Count)
}

func TestRunDrainsMailAndPublishesArticles(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	db := newTestDB(t, allModels()...)
	d, _ := newTestDispatcher(t, db, now)

	due := now.Add(-time.Hour)
	article := articledomain.Article{
		ID:                 uuid.New(),
		Title:              "Fight Camp Diary",
		Slug:               "fight-camp-diary",
		Status:             articledomain.StatusDraft,
		ScheduledPublishAt: &due,
	}
	require.NoError(t, db.Create(&article).Error)

	item := mailqueuedomain.Item{
		ID:            uuid.New(),
		Recipient:     "member@example.com",
		Subject:       "hello",
		Body:          "<p>hello</p>",
		Status:        mailqueuedomain.StatusPending,
		NextAttemptAt: now.Add(-time.Minute),
	}
	require.NoError(t, db.Create(&item).Error)

	result := d.Run(context.Background())
	require.True(t, result.Success)
	require.Equal(t, 1, result.Tasks[TaskMailQueue].Count)
	require.Equal(t, 1, result.Tasks[TaskScheduledArticles].Count)
}

func TestRunIsolatesTaskFailures(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	// scheduled_reports table missing: the reports task must fail
	// without taking the others down
	db := newTestDB(t,
		&bookingdomain.Booking{},
		&notificationdomain.Notification{},
		&mailqueuedomain.Item{},
		&articledomain.Article{},
	)
	d, _ := newTestDispatcher(t, db, now)

	result := d.Run(context.Background())
	require.False(t, result.Success)
	require.Equal(t, "1 of 3 tasks failed", result.Message)

	require.True(t, result.Tasks[TaskMailQueue].Success)
	require.True(t, result.Tasks[TaskScheduledArticles].Success)

	reports := result.Tasks[TaskScheduledReports]
	require.False(t, reports.Success)
	require.NotEmpty(t, reports.Error)
}
