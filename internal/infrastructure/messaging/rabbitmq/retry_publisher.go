package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RetryPublisher moves failed deliveries to a retry tier or the final DLQ.
type RetryPublisher struct {
	ch *amqp.Channel
	lg zerolog.Logger

	returnCh <-chan amqp.Return
}

func NewRetryPublisher(ch *amqp.Channel, lg zerolog.Logger) (*RetryPublisher, error) {
	if ch == nil {
		return nil, fmt.Errorf("nil channel")
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("confirm mode: %w", err)
	}

	p := &RetryPublisher{
		ch: ch,
		lg: lg.With().Str("component", "retry_publisher").Logger(),
	}
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, returnBuffer))
	return p, nil
}

func tierExchange(tier string) string {
	switch tier {
	case "10s":
		return DLX10sExchange
	case "1m":
		return DLX1mExchange
	default:
		return DLX10mExchange
	}
}

func (p *RetryPublisher) PublishRetry(ctx context.Context, tier string, orig amqp.Delivery, nextAttempt int, cause error) error {
	ex := tierExchange(tier)

	h := copyHeaders(orig.Headers)
	h["x-attempt"] = nextAttempt
	h["x-orig-routing-key"] = orig.RoutingKey
	if cause != nil {
		h["x-error"] = cause.Error()
	}

	takeReturn(p.returnCh, "")
	// keep the business routing key so the message dead-letters back to the main queue
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, ex, orig.RoutingKey, true, false, republish(orig, h))
	if err != nil {
		return fmt.Errorf("publish retry: %w", err)
	}
	if err := awaitConfirm(ctx, dc, p.returnCh, orig.MessageId); err != nil {
		return fmt.Errorf("retry tier %s: %w", tier, err)
	}
	return nil
}

func (p *RetryPublisher) PublishFinal(ctx context.Context, orig amqp.Delivery, reason string, cause error) error {
	h := copyHeaders(orig.Headers)
	h["x-orig-routing-key"] = orig.RoutingKey
	h["x-dlq-reason"] = reason
	if cause != nil {
		h["x-error"] = cause.Error()
	}

	takeReturn(p.returnCh, "")
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, DLXFinalExchange, rkFinalDLQ, true, false, republish(orig, h))
	if err != nil {
		return fmt.Errorf("publish final dlq: %w", err)
	}
	if err := awaitConfirm(ctx, dc, p.returnCh, orig.MessageId); err != nil {
		return fmt.Errorf("final dlq: %w", err)
	}
	return nil
}

func republish(orig amqp.Delivery, h amqp.Table) amqp.Publishing {
	return amqp.Publishing{
		ContentType:   orig.ContentType,
		Body:          orig.Body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		Headers:       h,
		CorrelationId: orig.CorrelationId,
		MessageId:     orig.MessageId,
	}
}

func copyHeaders(in amqp.Table) amqp.Table {
	out := amqp.Table{}
	for k, v := range in {
		out[k] = v
	}
	return out
}
