package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/affiliate/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversion{}))
	return db
}

func seedConversion(t *testing.T, db *gorm.DB, referrerID uuid.UUID, bookingID *uuid.UUID, status string, commission int64) domain.Conversion {
	t.Helper()
	conversion := domain.Conversion{
		ID:               uuid.New(),
		ReferrerID:       referrerID,
		ReferredUserID:   uuid.New(),
		BookingID:        bookingID,
		Kind:             domain.KindBooking,
		Status:           status,
		CommissionAmount: commission,
		CreatedAt:        testNow,
	}
	require.NoError(t, db.Create(&conversion).Error)
	return conversion
}

func TestConfirmWherePending(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	referrer := uuid.New()
	bookingID := uuid.New()
	seedConversion(t, db, referrer, &bookingID, domain.StatusPending, 15000)

	affected, err := repo.ConfirmWherePending(ctx, db, bookingID, testNow)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	conversions, err := repo.FindByBookingID(ctx, db, bookingID)
	require.NoError(t, err)
	require.Len(t, conversions, 1)
	require.Equal(t, domain.StatusConfirmed, conversions[0].Status)
	require.NotNil(t, conversions[0].ConfirmedAt)

	// repeating the confirmation touches nothing
	affected, err = repo.ConfirmWherePending(ctx, db, bookingID, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)

	conversions, err = repo.FindByBookingID(ctx, db, bookingID)
	require.NoError(t, err)
	require.Equal(t, testNow, conversions[0].ConfirmedAt.UTC())
}

func TestStatsCountsPendingInTotalEarnings(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	referrer := uuid.New()
	confirmedBooking := uuid.New()
	seedConversion(t, db, referrer, &confirmedBooking, domain.StatusConfirmed, 10000)
	seedConversion(t, db, referrer, nil, domain.StatusPending, 4000)
	// another referrer's conversions stay out of the aggregate
	seedConversion(t, db, uuid.New(), nil, domain.StatusConfirmed, 99999)

	stats, err := repo.Stats(ctx, db, referrer)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalConversions)
	require.Equal(t, 1, stats.ConfirmedConversions)
	// total earnings includes pending commission; the settled figure
	// is ConfirmedEarnings
	require.EqualValues(t, 14000, stats.TotalEarnings)
	require.EqualValues(t, 10000, stats.ConfirmedEarnings)
}
