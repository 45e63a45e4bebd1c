package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// BreakerSender stops calling a failing SMTP relay for a cool-down period.
// While open it returns a TemporaryError so callers retry later. Only
// transient failures count; a rejected address says nothing about the relay.
type BreakerSender struct {
	next         Sender
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time
	lg           zerolog.Logger

	mu            sync.Mutex
	state         circuitState
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

func NewBreakerSender(next Sender, maxFailures int, resetTimeout time.Duration, lg zerolog.Logger) *BreakerSender {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &BreakerSender{
		next:         next,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		lg:           lg.With().Str("component", "smtp_breaker").Logger(),
	}
}

func (b *BreakerSender) Send(ctx context.Context, n domain.Notification) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := b.next.Send(ctx, n)
	b.record(err)
	return err
}

func (b *BreakerSender) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen && b.now().Sub(b.openedAt) >= b.resetTimeout {
		b.setState(stateHalfOpen)
	}
	switch b.state {
	case stateOpen:
		return TemporaryError{msg: "smtp circuit open"}
	case stateHalfOpen:
		// one trial send at a time
		if b.trialInFlight {
			return TemporaryError{msg: "smtp circuit half-open"}
		}
		b.trialInFlight = true
	}
	return nil
}

func (b *BreakerSender) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false

	if err == nil || isPermanent(err) {
		b.failures = 0
		if b.state != stateClosed {
			b.setState(stateClosed)
		}
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		if b.state != stateOpen {
			b.setState(stateOpen)
		}
	}
}

func (b *BreakerSender) setState(s circuitState) {
	b.lg.Warn().Str("from", b.state.String()).Str("to", s.String()).Int("failures", b.failures).Msg("smtp circuit state change")
	b.state = s
}

func (b *BreakerSender) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

func isPermanent(err error) bool {
	var pm interface{ Permanent() bool }
	return errors.As(err, &pm) && pm.Permanent()
}
