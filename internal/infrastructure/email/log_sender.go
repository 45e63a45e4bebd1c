package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/domain"
)

// LogSender writes notifications to the log instead of delivering them.
// Used when SMTP is not configured.
//
// failMode simulates delivery problems:
//   - "" or "none": always succeed
//   - "transient": return a TemporaryError
//   - "permanent": return a PermanentError
type LogSender struct {
	lg       zerolog.Logger
	failMode string
}

func NewLogSender(lg zerolog.Logger, failMode string) *LogSender {
	return &LogSender{
		lg:       lg.With().Str("component", "log_sender").Logger(),
		failMode: strings.ToLower(strings.TrimSpace(failMode)),
	}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.lg.Info().
		Str("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Str("to", n.To).
		Str("subject", n.Subject).
		Msg("email (log only)")

	switch s.failMode {
	case "transient":
		return TemporaryError{msg: fmt.Sprintf("simulated transient failure (%s)", n.Kind)}
	case "permanent":
		return PermanentError{msg: fmt.Sprintf("simulated permanent failure (%s)", n.Kind)}
	default:
		return nil
	}
}
