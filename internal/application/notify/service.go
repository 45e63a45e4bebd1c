package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/pkg/metrics"
)

type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

type IdempotencyStore interface {
	// Seen returns true if key already marked as sent.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkSent marks key as sent with TTL; an existing mark counts as success.
	MarkSent(ctx context.Context, key string, ttl time.Duration) error
}

type permanentMarker interface{ Permanent() bool }

// IsPermanent reports whether err carries a Permanent() marker set to true.
func IsPermanent(err error) bool {
	var pm permanentMarker
	return errors.As(err, &pm) && pm.Permanent()
}

// Service delivers one notification, skipping ids that were already sent.
type Service struct {
	sender Sender
	idem   IdempotencyStore // nil => disabled
	ttl    time.Duration
	lg     zerolog.Logger
}

func NewService(sender Sender, idem IdempotencyStore, ttl time.Duration, lg zerolog.Logger) *Service {
	return &Service{
		sender: sender,
		idem:   idem,
		ttl:    ttl,
		lg:     lg.With().Str("component", "notify_service").Logger(),
	}
}

func (s *Service) Handle(ctx context.Context, n domain.Notification) error {
	if n.To == "" {
		return permanentError{msg: "notification has no recipient"}
	}
	kind := string(n.Kind)

	if s.idem != nil && n.ID != "" {
		seen, err := s.idem.Seen(ctx, n.ID)
		if err != nil {
			return err
		}
		if seen {
			metrics.RecordIdempotencyHit()
			s.lg.Info().Str("notification_id", n.ID).Str("kind", kind).Msg("idempotent skip (already sent)")
			return nil
		}
	}

	start := time.Now()
	if err := s.sender.Send(ctx, n); err != nil {
		errType := "temporary"
		if IsPermanent(err) {
			errType = "permanent"
		}
		metrics.RecordNotificationFailed(kind, errType)
		return err
	}
	metrics.RecordNotificationSent(kind, time.Since(start))

	if s.idem != nil && n.ID != "" {
		if err := s.idem.MarkSent(ctx, n.ID, s.ttl); err != nil {
			s.lg.Warn().Err(err).Str("notification_id", n.ID).Msg("idempotency mark failed (send already succeeded)")
		}
	}

	s.lg.Info().Str("notification_id", n.ID).Str("kind", kind).Msg("notification sent")
	return nil
}

type permanentError struct{ msg string }

func (e permanentError) Error() string   { return e.msg }
func (e permanentError) Permanent() bool { return true }
