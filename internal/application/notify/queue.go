package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/pkg/metrics"
	"github.com/baechuer/church-service/internal/pkg/retry"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

type Handler interface {
	Handle(ctx context.Context, n domain.Notification) error
}

// Queue is the in-process delivery path used when no broker is configured.
// Enqueue never blocks the caller; a fixed set of workers drains the buffer
// and retries temporary failures with exponential backoff.
type Queue struct {
	handler Handler
	retry   retry.Config
	lg      zerolog.Logger

	jobs    chan domain.Notification
	workers int
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewQueue(h Handler, workers, buffer int, rc retry.Config, lg zerolog.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		handler: h,
		retry:   rc,
		lg:      lg.With().Str("component", "notify_queue").Logger(),
		jobs:    make(chan domain.Notification, buffer),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) Enqueue(_ context.Context, n domain.Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- n:
		metrics.SetNotifyQueueDepth(len(q.jobs))
		return nil
	default:
		metrics.RecordNotificationDropped(string(n.Kind), "queue_full")
		return ErrQueueFull
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for n := range q.jobs {
		metrics.SetNotifyQueueDepth(len(q.jobs))
		q.process(n)
	}
}

func (q *Queue) process(n domain.Notification) {
	kind := string(n.Kind)
	err := retry.Do(q.ctx, q.retry,
		func(err error) bool { return !IsPermanent(err) },
		func(attempt int, err error) {
			metrics.RecordNotificationRetry(kind)
			q.lg.Warn().Err(err).Str("notification_id", n.ID).Int("attempt", attempt).Msg("retrying notification")
		},
		func() error { return q.handler.Handle(q.ctx, n) },
	)
	if err != nil {
		reason := "retries_exhausted"
		if IsPermanent(err) {
			reason = "permanent"
		}
		metrics.RecordNotificationDropped(kind, reason)
		q.lg.Error().Err(err).Str("notification_id", n.ID).Str("kind", kind).Str("reason", reason).Msg("notification dropped")
	}
}

// Stop rejects new work and drains what is buffered. If ctx ends first,
// in-flight retries are cancelled and Stop returns ctx.Err().
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, n domain.Notification) error

func (f HandlerFunc) Handle(ctx context.Context, n domain.Notification) error { return f(ctx, n) }
