package contact

import (
	"context"
	"fmt"
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
	Create(ctx context.Context, m *domain.ContactMessage) error
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, f domain.ContactFilter, page domain.PageRequest) (domain.Page[domain.ContactMessage], error)
	SetStatus(ctx context.Context, id string, status domain.ContactStatus) error
}

type Notifier interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

type Service struct {
	repo      Repo
	notifier  Notifier
	clock     Clock
	recipient string
}

func NewService(repo Repo, notifier Notifier, clock Clock, recipient string) *Service {
	return &Service{repo: repo, notifier: notifier, clock: clock, recipient: recipient}
}

type SubmitCmd struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func (s *Service) Submit(ctx context.Context, cmd SubmitCmd) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(cmd.Name),
		Email:     domain.NormalizeEmail(cmd.Email),
		Phone:     strings.TrimSpace(cmd.Phone),
		Subject:   strings.TrimSpace(cmd.Subject),
		Message:   strings.TrimSpace(cmd.Message),
		Status:    domain.ContactNew,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.recipient != "" {
		n := domain.Notification{
			ID:      uuid.NewString(),
			Kind:    domain.NotifyContactMessage,
			To:      s.recipient,
			Subject: "Contact form: " + m.Subject,
			Body:    fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", m.Name, m.Email, m.Phone, m.Message),
		}
		if err := s.notifier.Enqueue(ctx, n); err != nil {
			zlog.Warn().Err(err).Str("contact_id", m.ID).Msg("contact notification enqueue failed")
		}
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, status string, page domain.PageRequest) (domain.Page[domain.ContactMessage], error) {
	var f domain.ContactFilter
	if status != "" {
		st, ok := domain.ParseContactStatus(status)
		if !ok {
			return domain.Page[domain.ContactMessage]{}, domain.ErrValidationMeta("invalid status", map[string]string{"invalid": "status"})
		}
		f.Status = st
	}
	return s.repo.List(ctx, f, page.Normalize())
}

func (s *Service) SetStatus(ctx context.Context, id, status string) (*domain.ContactMessage, error) {
	st, ok := domain.ParseContactStatus(status)
	if !ok {
		return nil, domain.ErrValidationMeta("invalid status", map[string]string{"invalid": "status"})
	}
	if err := s.repo.SetStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
