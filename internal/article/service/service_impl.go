package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"
	"github.com/nakmuayhub/platform/internal/article/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("article"),
		repo: p.Repo,
	}
}

// PublishDue publishes every draft whose scheduled time has passed.
// Rows are processed independently so one failure doesn't block the
// rest. Returns the number published.
func (s *Service) PublishDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindScheduledDue(ctx, s.db, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, article := range due {
		articleSlug := article.Slug
		if articleSlug == "" {
			articleSlug = slug.Make(article.Title)
		}
		ok, err := s.repo.Publish(ctx, s.db, article.ID, articleSlug, now)
		if err != nil {
			s.log.Warn("publish scheduled article",
				zap.String("id", article.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if ok {
			published++
		}
	}
	return published, nil
}
