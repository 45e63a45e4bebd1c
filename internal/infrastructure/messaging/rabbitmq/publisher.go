package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
)

const (
	// Wait window for a broker confirm
	publishWait = 250 * time.Millisecond

	returnBuffer = 32
)

// Publisher puts notifications on the broker. It implements the Notifier
// port used by the application services.
type Publisher struct {
	url      string
	exchange string
	queue    string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	returnCh <-chan amqp.Return
}

func NewPublisher(cfg config.RabbitConfig) (*Publisher, error) {
	p := &Publisher{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect must be called with mu held.
func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("publish channel: %w", err)
	}

	if err := declareTopology(ch, p.exchange, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	// enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.conn = conn
	p.ch = ch
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, returnBuffer))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Enqueue publishes n as JSON with mandatory + confirms. The notification ID
// is the AMQP MessageId so the consumer can dedupe redeliveries.
func (p *Publisher) Enqueue(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		return errors.New("missing notification id")
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return fmt.Errorf("publisher reconnect: %w", err)
		}
	}

	// returns left over from an earlier timed-out publish
	takeReturn(p.returnCh, "")

	rk := RoutingKey(string(n.Kind))
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange,
		rk,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    n.ID,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return awaitConfirm(ctx, dc, p.returnCh, n.ID)
}

// awaitConfirm waits for the broker's confirmation of this publish only.
// The broker sends basic.return before the ack of the same message, so an
// unroutable publish is already in returns once the ack is seen.
func awaitConfirm(ctx context.Context, dc *amqp.DeferredConfirmation, returns <-chan amqp.Return, msgID string) error {
	if dc == nil {
		return errors.New("channel is not in confirm mode")
	}

	wctx, cancel := context.WithTimeout(ctx, publishWait)
	defer cancel()

	ack, err := dc.WaitContext(wctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New("publish wait timeout (no confirm)")
	}
	if r, ok := takeReturn(returns, msgID); ok {
		return fmt.Errorf("publish returned: reply=%d text=%q exchange=%q rk=%q",
			r.ReplyCode, r.ReplyText, r.Exchange, r.RoutingKey)
	}
	if !ack {
		return errors.New("publish nacked by broker")
	}
	return nil
}

// takeReturn drains every buffered return and reports the one for msgID
// (any return when msgID is empty). Draining keeps the channel's notify goroutine from blocking on a full buffer.
func takeReturn(returns <-chan amqp.Return, msgID string) (amqp.Return, bool) {
	var (
		match amqp.Return
		found bool
	)
	for {
		select {
		case r, ok := <-returns:
			if !ok {
				return match, found
			}
			if !found && (msgID == "" || r.MessageId == msgID) {
				match, found = r, true
			}
		default:
			return match, found
		}
	}
}
