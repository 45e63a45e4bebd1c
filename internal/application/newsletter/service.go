package newsletter

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/church-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetByEmail(ctx context.Context, email string) (*domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
}

type Notifier interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

type Service struct {
	repo     Repo
	notifier Notifier
	clock    Clock
}

func NewService(repo Repo, notifier Notifier, clock Clock) *Service {
	return &Service{repo: repo, notifier: notifier, clock: clock}
}

// Subscribe creates a subscription or reactivates an unsubscribed one in
// place. created is false on reactivation. An active duplicate is a conflict.
func (s *Service) Subscribe(ctx context.Context, email, name string) (sub *domain.Subscription, created bool, err error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	now := s.clock.Now()

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, false, domain.ErrConflict("email is already subscribed")
		}
		existing.Reactivate(now, name)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		sub = existing
	case domain.HasCode(err, domain.CodeNotFound):
		sub = &domain.Subscription{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         name,
			IsActive:     true,
			SubscribedAt: now,
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, false, err
		}
		created = true
	default:
		return nil, false, err
	}

	n := domain.Notification{
		ID:      uuid.NewString(),
		Kind:    domain.NotifyNewsletterWelcome,
		To:      sub.Email,
		Subject: "Welcome to our newsletter",
		Body:    "Thank you for subscribing. You will hear from us about upcoming events and sermons.\n",
	}
	if err := s.notifier.Enqueue(ctx, n); err != nil {
		zlog.Warn().Err(err).Str("subscription_id", sub.ID).Msg("welcome notification enqueue failed")
	}
	return sub, created, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) (*domain.Subscription, error) {
	sub, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !sub.IsActive {
		return sub, nil
	}
	sub.Deactivate(s.clock.Now())
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
