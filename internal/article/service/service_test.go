package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/article/domain"
	"github.com/nakmuayhub/platform/internal/article/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Article{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	return New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
}

func seedArticle(t *testing.T, db *gorm.DB, title, slug string, scheduledAt *time.Time, status string) domain.Article {
	t.Helper()
	article := domain.Article{
		ID:                 uuid.New(),
		Title:              title,
		Slug:               slug,
		Content:            "...",
		Status:             status,
		ScheduledPublishAt: scheduledAt,
		CreatedAt:          testNow.Add(-24 * time.Hour),
		UpdatedAt:          testNow.Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(&article).Error)
	return article
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) domain.Article {
	t.Helper()
	var article domain.Article
	require.NoError(t, db.Raw(`SELECT * FROM articles WHERE id = ?`, id).Scan(&article).Error)
	return article
}

func TestPublishDue(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	due := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	scheduled := seedArticle(t, db, "Clinch Basics", "clinch-basics", &due, domain.StatusDraft)
	notYet := seedArticle(t, db, "Teep Timing", "teep-timing", &future, domain.StatusDraft)
	unscheduled := seedArticle(t, db, "Gym Etiquette", "gym-etiquette", nil, domain.StatusDraft)

	published, err := svc.PublishDue(context.Background(), testNow)
	require.NoError(t, err)
	require.Equal(t, 1, published)

	got := reload(t, db, scheduled.ID)
	require.Equal(t, domain.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	require.Nil(t, got.ScheduledPublishAt)

	require.Equal(t, domain.StatusDraft, reload(t, db, notYet.ID).Status)
	require.Equal(t, domain.StatusDraft, reload(t, db, unscheduled.ID).Status)
}

func TestPublishDueGeneratesMissingSlug(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	due := testNow.Add(-time.Minute)
	article := seedArticle(t, db, "Muay Thai for Beginners!", "", &due, domain.StatusDraft)

	published, err := svc.PublishDue(context.Background(), testNow)
	require.NoError(t, err)
	require.Equal(t, 1, published)

	got := reload(t, db, article.ID)
	require.Equal(t, "muay-thai-for-beginners", got.Slug)
}

func TestPublishDueIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	due := testNow.Add(-time.Minute)
	article := seedArticle(t, db, "Elbow Setups", "elbow-setups", &due, domain.StatusDraft)

	published, err := svc.PublishDue(context.Background(), testNow)
	require.NoError(t, err)
	require.Equal(t, 1, published)

	firstPublishedAt := reload(t, db, article.ID).PublishedAt

	published, err = svc.PublishDue(context.Background(), testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 0, published)
	require.Equal(t, firstPublishedAt, reload(t, db, article.ID).PublishedAt)
}

func TestPublishDueSkipsAlreadyPublished(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	due := testNow.Add(-time.Minute)
	seedArticle(t, db, "Already Out", "already-out", &due, domain.StatusPublished)

	published, err := svc.PublishDue(context.Background(), testNow)
	require.NoError(t, err)
	require.Equal(t, 0, published)
}
