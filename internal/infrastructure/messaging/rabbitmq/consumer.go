package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/pkg/metrics"
)

// Handler delivers one decoded notification.
type Handler interface {
	Handle(ctx context.Context, n domain.Notification) error
}

// retryPublisher is the retry/DLQ contract used by Consumer; unit tests inject a fake.
type retryPublisher interface {
	PublishRetry(ctx context.Context, tier string, orig amqp.Delivery, nextAttempt int, cause error) error
	PublishFinal(ctx context.Context, orig amqp.Delivery, reason string, cause error) error
}

const defaultMaxAttempts = 5

type Consumer struct {
	url         string
	exchange    string
	queue       string
	prefetch    int
	maxAttempts int
	tag         string

	lg      zerolog.Logger
	handler Handler

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	cancel  context.CancelFunc

	conn      *amqp.Connection
	chConsume *amqp.Channel
	chPublish *amqp.Channel

	deliveries <-chan amqp.Delivery
	pub        retryPublisher
}

func NewConsumer(cfg config.RabbitConfig, h Handler, lg zerolog.Logger) *Consumer {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Consumer{
		url:         cfg.URL,
		exchange:    cfg.Exchange,
		queue:       cfg.Queue,
		prefetch:    cfg.Prefetch,
		maxAttempts: maxAttempts,
		tag:         "church-service",
		handler:     h,
		lg:          lg.With().Str("component", "rabbitmq_consumer").Logger(),
	}
}

// Start launches the supervisor. Handlers run on a context detached from ctx:
// only Stop ends consumption, so a shutdown signal never fails a delivery
// that is already being handled.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.handler == nil {
		return fmt.Errorf("nil handler")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.running = true
	go c.run(runCtx, c.stopCh, c.doneCh)
	return nil
}

// Stop stops taking new deliveries and waits for the in-flight one to be
// acked. If ctx expires first the handler context is cancelled and the
// unacked delivery is redelivered by the broker once the channel closes.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	stopCh, doneCh, cancel := c.stopCh, c.doneCh, c.cancel
	c.running = false
	c.mu.Unlock()

	close(stopCh)
	defer c.closeConn()
	defer cancel()

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run supervises the connection and reconnects with capped backoff.
func (c *Consumer) run(ctx context.Context, stop <-chan struct{}, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		// a later Start owns the fields once Stop has timed out
		if c.doneCh == done {
			c.doneCh = nil
			c.running = false
		}
		c.mu.Unlock()
		close(done)
	}()

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil || stopped(stop) {
			c.lg.Info().Msg("consumer supervisor exiting")
			return
		}

		if err := c.connectAndDeclare(); err != nil {
			if isPreconditionFailed(err) {
				c.lg.Error().Err(err).Msg("FATAL: topology precondition failed. Delete and recreate MQ resources, then restart.")
				return
			}
			c.lg.Error().Err(err).Dur("backoff", backoff).Msg("connectAndDeclare failed; retrying")
			if !sleepOrDone(ctx, stop, backoff) {
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = time.Second
		c.consumeLoop(ctx, stop)

		if ctx.Err() != nil || stopped(stop) {
			return
		}

		c.lg.Warn().Dur("backoff", backoff).Msg("deliveries closed; reconnecting")
		c.closeConn()
		if !sleepOrDone(ctx, stop, backoff) {
			return
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func (c *Consumer) connectAndDeclare() error {
	c.closeConn()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	chConsume, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("consume channel: %w", err)
	}
	chPublish, err := conn.Channel()
	if err != nil {
		closeAll(conn, chConsume, nil)
		return fmt.Errorf("publish channel: %w", err)
	}

	if err := declareTopology(chConsume, c.exchange, c.queue); err != nil {
		closeAll(conn, chConsume, chPublish)
		return err
	}

	if c.prefetch > 0 {
		if err := chConsume.Qos(c.prefetch, 0, false); err != nil {
			closeAll(conn, chConsume, chPublish)
			return fmt.Errorf("qos: %w", err)
		}
	}

	dlv, err := chConsume.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		closeAll(conn, chConsume, chPublish)
		return fmt.Errorf("consume: %w", err)
	}

	pub, err := NewRetryPublisher(chPublish, c.lg)
	if err != nil {
		closeAll(conn, chConsume, chPublish)
		return fmt.Errorf("retry publisher: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.chConsume = chConsume
	c.chPublish = chPublish
	c.deliveries = dlv
	c.pub = pub
	c.mu.Unlock()

	c.lg.Info().
		Str("exchange", c.exchange).
		Str("queue", c.queue).
		Int("prefetch", c.prefetch).
		Int("max_attempts", c.maxAttempts).
		Msg("rabbitmq consumer ready")
	return nil
}

// consumeLoop works on the deliveries and publisher of the current
// connection; closeConn may reset the fields concurrently.
func (c *Consumer) consumeLoop(ctx context.Context, stop <-chan struct{}) {
	c.mu.Lock()
	deliveries, pub := c.deliveries, c.pub
	c.mu.Unlock()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return

		case d, ok := <-deliveries:
			if !ok {
				c.lg.Warn().Msg("deliveries channel closed")
				return
			}

			start := time.Now()
			err := c.handleDelivery(ctx, pub, d)
			if err == nil {
				_ = d.Ack(false)
				c.lg.Debug().Str("routing_key", d.RoutingKey).Dur("took", time.Since(start)).Msg("message processed")
				continue
			}

			var rerr *requeueError
			if errors.As(err, &rerr) && rerr.requeue {
				_ = d.Nack(false, true)
				c.lg.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("handle failed; requeue=true")
				continue
			}

			_ = d.Nack(false, false)
			c.lg.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("handle failed; nack requeue=false")
		}
	}
}

// handleDelivery returns nil when the delivery may be acked: handled,
// moved to a retry tier, or moved to the final DLQ.
func (c *Consumer) handleDelivery(ctx context.Context, pub retryPublisher, d amqp.Delivery) error {
	var n domain.Notification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		return c.toFinalDLQ(ctx, pub, d, "bad_json", err)
	}
	if n.ID == "" {
		n.ID = d.MessageId
	}

	if err := c.handler.Handle(ctx, n); err != nil {
		return c.onHandlerError(ctx, pub, d, n, err)
	}
	return nil
}

func (c *Consumer) onHandlerError(ctx context.Context, pub retryPublisher, d amqp.Delivery, n domain.Notification, err error) error {
	// consumer is stopping: hand the message back untouched
	if ctx.Err() != nil {
		return requeue(fmt.Errorf("handler interrupted: %w", err))
	}
	if isNonRetriable(err) {
		return c.toFinalDLQ(ctx, pub, d, "non_retriable", err)
	}

	attempt := getAttempt(d.Headers)
	if attempt >= c.maxAttempts {
		return c.toFinalDLQ(ctx, pub, d, "max_attempts_exceeded", err)
	}

	nextAttempt := attempt + 1
	tier := retryTier(nextAttempt)

	if pub == nil {
		return requeue(fmt.Errorf("nil retry publisher"))
	}
	if pubErr := pub.PublishRetry(ctx, tier, d, nextAttempt, err); pubErr != nil {
		return requeue(fmt.Errorf("republish retry failed: %w", pubErr))
	}

	metrics.RecordNotificationRetry(string(n.Kind))
	c.lg.Warn().
		Err(err).
		Int("attempt", nextAttempt).
		Str("notification_id", n.ID).
		Str("tier", tier).
		Msg("retriable failure: republished to retry tier")
	return nil
}

func (c *Consumer) toFinalDLQ(ctx context.Context, pub retryPublisher, d amqp.Delivery, reason string, cause error) error {
	if pub == nil {
		return requeue(fmt.Errorf("nil retry publisher"))
	}
	if pubErr := pub.PublishFinal(ctx, d, reason, cause); pubErr != nil {
		return requeue(fmt.Errorf("republish dlq failed: %w", pubErr))
	}
	metrics.RecordNotificationDropped(strings.TrimPrefix(d.RoutingKey, "notify."), reason)
	c.lg.Error().Str("reason", reason).Err(cause).Str("message_id", d.MessageId).Msg("sent to final DLQ")
	return nil
}

func getAttempt(h amqp.Table) int {
	v, ok := h["x-attempt"]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	default:
		return 0
	}
}

// isNonRetriable is true only for errors that declare themselves permanent.
// Timeouts and cancellations are transient.
func isNonRetriable(err error) bool {
	var per interface{ Permanent() bool }
	return errors.As(err, &per) && per.Permanent()
}

type requeueError struct {
	err     error
	requeue bool
}

func (e *requeueError) Error() string { return e.err.Error() }
func (e *requeueError) Unwrap() error { return e.err }

func requeue(err error) error { return &requeueError{err: err, requeue: true} }

func sleepOrDone(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func closeAll(conn *amqp.Connection, a, b *amqp.Channel) {
	if b != nil {
		_ = b.Close()
	}
	if a != nil {
		_ = a.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Consumer) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chPublish != nil {
		_ = c.chPublish.Close()
		c.chPublish = nil
	}
	if c.chConsume != nil {
		_ = c.chConsume.Close()
		c.chConsume = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.deliveries = nil
	c.pub = nil
}

func isPreconditionFailed(err error) bool {
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "PRECONDITION_FAILED") || strings.Contains(msg, "INEQUIVALENT ARG")
}
