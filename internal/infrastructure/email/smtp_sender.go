package email

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
)

type SMTPSender struct {
	lg zerolog.Logger

	host     string
	port     int
	user     string
	pass     string
	from     string
	insecure bool

	timeout time.Duration
}

func NewSMTPSender(cfg config.SMTPConfig, lg zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		lg:       lg.With().Str("component", "smtp_sender").Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.Username,
		pass:     cfg.Password,
		from:     cfg.From,
		insecure: cfg.Insecure,
		timeout:  cfg.Timeout,
	}
}

func (s *SMTPSender) Send(ctx context.Context, n domain.Notification) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return PermanentError{msg: "invalid from address: " + err.Error()}
	}
	if err := m.To(n.To); err != nil {
		return PermanentError{msg: "invalid to address: " + err.Error()}
	}
	m.Subject(n.Subject)
	m.SetBodyString(mail.TypeTextPlain, n.Body)
	m.AddAlternativeString(mail.TypeTextHTML, renderHTML(n.Subject, n.Body))

	tlsPolicy := mail.TLSMandatory
	if s.insecure {
		tlsPolicy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.user), mail.WithPassword(s.pass))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return PermanentError{msg: "smtp client init failed: " + err.Error()}
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("kind", string(n.Kind)).Str("notification_id", n.ID).Msg("smtp send failed")
		return classifySMTPError(err)
	}

	s.lg.Info().Str("kind", string(n.Kind)).Str("notification_id", n.ID).Msg("smtp send ok")
	return nil
}

func classifySMTPError(err error) error {
	msg := err.Error()
	if containsAny(msg, "535", "5.7.8", "authentication", "Username and Password not accepted") {
		return PermanentError{msg: "smtp auth failed: " + msg}
	}
	if containsAny(msg, "550", "553", "5.1.1") {
		return PermanentError{msg: "smtp recipient rejected: " + msg}
	}
	return TemporaryError{msg: "smtp transient failure: " + msg}
}

// renderHTML wraps a plain-text body in a minimal HTML alternative; blank lines become paragraphs.
func renderHTML(title, body string) string {
	var b strings.Builder
	b.WriteString(`<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>`)
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h2>\n")
	for _, para := range strings.Split(strings.TrimSpace(body), "\n\n") {
		if para == "" {
			continue
		}
		b.WriteString("    <p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br/>"))
		b.WriteString("</p>\n")
	}
	b.WriteString("  </body>\n</html>")
	return b.String()
}

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if x != "" && strings.Contains(s, x) {
			return true
		}
	}
	return false
}
