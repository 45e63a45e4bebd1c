// Package audit writes structured records of security-relevant actions:
// sign-ins, account changes and deletions by leadership.
package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	reqctx "github.com/baechuer/church-service/internal/pkg/context"
)

type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Bool("audit", true).Logger()}
}

func (l *Logger) LoginSucceeded(ctx context.Context, userID, email, ip string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("user logged in")
}

func (l *Logger) LoginFailed(ctx context.Context, email, ip, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("login attempt failed")
}

func (l *Logger) UserRegistered(ctx context.Context, actorID, userID, role string) {
	l.log.Info().
		Str("action", "user_registered").
		Str("actor_user_id", actorID).
		Str("target_user_id", userID).
		Str("role", role).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("user account created")
}

func (l *Logger) UserDeactivated(ctx context.Context, actorID, userID string) {
	l.log.Warn().
		Str("action", "user_deactivated").
		Str("actor_user_id", actorID).
		Str("target_user_id", userID).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("user account deactivated")
}

func (l *Logger) EventDeleted(ctx context.Context, actorID, eventID string) {
	l.log.Warn().
		Str("action", "event_deleted").
		Str("actor_user_id", actorID).
		Str("event_id", eventID).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("event deleted")
}

// MaskEmail keeps the first two characters of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
