package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nakmuayhub/platform/internal/config"
	"github.com/nakmuayhub/platform/internal/mailqueue/domain"
	"github.com/nakmuayhub/platform/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Provider email.Provider
	Cfg      config.Config
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	provider   email.Provider
	batchSize  int
	maxRetries int
	retryBase  time.Duration
}

func New(p Params) *Service {
	batch := p.Cfg.MailQueue.BatchSize
	if batch <= 0 {
		batch = 10
	}
	maxRetries := p.Cfg.MailQueue.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryBase := p.Cfg.MailQueue.RetryBase
	if retryBase <= 0 {
		retryBase = 5 * time.Minute
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("mailqueue"),
		repo:       p.Repo,
		provider:   p.Provider,
		batchSize:  batch,
		maxRetries: maxRetries,
		retryBase:  retryBase,
	}
}

// Enqueue stores an email for the next drain pass.
func (s *Service) Enqueue(ctx context.Context, recipient, subject, body string, now time.Time) error {
	item := &domain.Item{
		ID:            uuid.New(),
		Recipient:     recipient,
		Subject:       subject,
		Body:          body,
		Status:        domain.StatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.repo.Enqueue(ctx, s.db, item)
}

// Drain pulls one bounded batch of due pending items and attempts
// delivery. Each item is claimed (pending -> processing) before the
// send; failures increment the retry counter and re-queue with an
// exponential backoff delay until the retry cap, then mark failed.
// Returns the number of emails sent.
func (s *Service) Drain(ctx context.Context, now time.Time) (int, error) {
	items, err := s.repo.FindPending(ctx, s.db, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, item := range items {
		claimed, err := s.repo.MarkProcessing(ctx, s.db, item.ID, now)
		if err != nil {
			s.log.Warn("claim queue item", zap.String("id", item.ID.String()), zap.Error(err))
			continue
		}
		if !claimed {
			// Another invocation got there first.
			continue
		}

		sendErr := s.provider.Send(ctx, []string{item.Recipient}, item.Subject, item.Body)
		if sendErr == nil {
			if err := s.repo.MarkSent(ctx, s.db, item.ID, now); err != nil {
				s.log.Warn("mark sent", zap.String("id", item.ID.String()), zap.Error(err))
				continue
			}
			sent++
			continue
		}

		retries := item.RetryCount + 1
		if retries >= s.maxRetries {
			if err := s.repo.MarkFailed(ctx, s.db, item.ID, retries, sendErr.Error(), now); err != nil {
				s.log.Warn("mark failed", zap.String("id", item.ID.String()), zap.Error(err))
			}
			s.log.Warn("queue item exhausted retries",
				zap.String("id", item.ID.String()),
				zap.Int("retries", retries),
				zap.Error(sendErr),
			)
			continue
		}

		nextAttempt := now.Add(s.Backoff(retries))
		if err := s.repo.Requeue(ctx, s.db, item.ID, retries, nextAttempt, sendErr.Error(), now); err != nil {
			s.log.Warn("requeue item", zap.String("id", item.ID.String()), zap.Error(err))
			continue
		}
		s.log.Warn("queue item delivery failed, requeued",
			zap.String("id", item.ID.String()),
			zap.Int("retries", retries),
			zap.Time("next_attempt_at", nextAttempt),
			zap.Error(sendErr),
		)
	}

	return sent, nil
}

// Backoff doubles the base delay per attempt: base, 2*base, 4*base, ...
func (s *Service) Backoff(retries int) time.Duration {
	if retries < 1 {
		retries = 1
	}
	return s.retryBase * time.Duration(1<<(retries-1))
}
