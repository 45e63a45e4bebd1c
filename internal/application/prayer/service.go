package prayer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/church-service/internal/domain"
)

type Service struct {
	repo      Repo
	notifier  Notifier
	clock     Clock
	recipient string
}

// NewService wires the prayer desk. recipient is the mailbox that hears about
// new requests; empty disables the notification.
func NewService(repo Repo, notifier Notifier, clock Clock, recipient string) *Service {
	return &Service{repo: repo, notifier: notifier, clock: clock, recipient: recipient}
}

type SubmitCmd struct {
	Name     string
	Email    string
	Request  string
	Category string
	IsPublic bool
}

func (s *Service) Submit(ctx context.Context, cmd SubmitCmd) (*domain.PrayerRequest, error) {
	cat, ok := domain.ParsePrayerCategory(strings.TrimSpace(cmd.Category))
	if !ok {
		return nil, domain.ErrValidationMeta("invalid category", map[string]string{"invalid": "category"})
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = domain.AnonymousName
	}

	p := &domain.PrayerRequest{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     domain.NormalizeEmail(cmd.Email),
		Request:   strings.TrimSpace(cmd.Request),
		Category:  cat,
		IsPublic:  cmd.IsPublic,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if s.recipient != "" {
		n := domain.Notification{
			ID:      uuid.NewString(),
			Kind:    domain.NotifyPrayerRequest,
			To:      s.recipient,
			Subject: fmt.Sprintf("New prayer request (%s)", p.Category),
			Body:    fmt.Sprintf("From: %s\nCategory: %s\n\n%s\n", p.Name, p.Category, p.Request),
		}
		// the request is already stored; a queue failure only costs the email
		if err := s.notifier.Enqueue(ctx, n); err != nil {
			zlog.Warn().Err(err).Str("prayer_id", p.ID).Msg("prayer notification enqueue failed")
		}
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f domain.PrayerFilter, page domain.PageRequest) (domain.Page[domain.PrayerRequest], error) {
	return s.repo.List(ctx, f, page.Normalize())
}

// SetAnswered marks a request answered (or reopens it).
func (s *Service) SetAnswered(ctx context.Context, id string, answered bool) (*domain.PrayerRequest, error) {
	var at *time.Time
	if answered {
		now := s.clock.Now()
		at = &now
	}
	if err := s.repo.SetAnswered(ctx, id, answered, at); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
