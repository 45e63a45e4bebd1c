package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Tier exchanges (topic)
	DLX10sExchange = "church.notifications.dlx.10s"
	DLX1mExchange  = "church.notifications.dlx.1m"
	DLX10mExchange = "church.notifications.dlx.10m"

	// Final DLQ exchange (topic)
	DLXFinalExchange = "church.notifications.dlx.final"

	rkFinalDLQ = "notify.final.dlq"

	// bindKey matches every routing key produced by RoutingKey.
	bindKey = "notify.#"
)

// RoutingKey maps a notification kind to its topic key, e.g. "notify.contact_message".
func RoutingKey(kind string) string {
	return "notify." + kind
}

type queueNames struct {
	main     string
	dlq      string
	retry10s string
	retry1m  string
	retry10m string
}

func namesFor(queue string) queueNames {
	return queueNames{
		main:     queue,
		dlq:      queue + ".dlq",
		retry10s: queue + ".retry.10s",
		retry1m:  queue + ".retry.1m",
		retry10m: queue + ".retry.10m",
	}
}

// declareTopology is idempotent; both the publisher and the consumer run it
// so whichever starts first can route messages.
func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("main exchange declare: %w", err)
	}
	for _, ex := range []string{DLX10sExchange, DLX1mExchange, DLX10mExchange, DLXFinalExchange} {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("dlx exchange declare (%s): %w", ex, err)
		}
	}

	n := namesFor(queue)
	mainArgs := amqp.Table{
		"x-dead-letter-exchange":    DLXFinalExchange,
		"x-dead-letter-routing-key": rkFinalDLQ,
	}
	if _, err := ch.QueueDeclare(n.main, true, false, false, false, mainArgs); err != nil {
		return fmt.Errorf("main queue declare: %w", err)
	}
	if err := ch.QueueBind(n.main, bindKey, exchange, false, nil); err != nil {
		return fmt.Errorf("main queue bind: %w", err)
	}

	if _, err := ch.QueueDeclare(n.dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("dlq queue declare: %w", err)
	}
	if err := ch.QueueBind(n.dlq, rkFinalDLQ, DLXFinalExchange, false, nil); err != nil {
		return fmt.Errorf("dlq queue bind: %w", err)
	}

	tiers := []struct {
		queue, exchange string
		ttl             time.Duration
	}{
		{n.retry10s, DLX10sExchange, 10 * time.Second},
		{n.retry1m, DLX1mExchange, time.Minute},
		{n.retry10m, DLX10mExchange, 10 * time.Minute},
	}
	for _, t := range tiers {
		if err := declareRetryQueue(ch, t.queue, t.exchange, t.ttl, exchange); err != nil {
			return err
		}
	}
	return nil
}

// declareRetryQueue: messages wait out the TTL, then dead-letter back to the
// main exchange with their original routing key.
func declareRetryQueue(ch *amqp.Channel, qName, tierExchange string, ttl time.Duration, mainExchange string) error {
	args := amqp.Table{
		"x-message-ttl":          int64(ttl / time.Millisecond),
		"x-dead-letter-exchange": mainExchange,
	}
	if _, err := ch.QueueDeclare(qName, true, false, false, false, args); err != nil {
		return fmt.Errorf("retry queue declare (%s): %w", qName, err)
	}
	if err := ch.QueueBind(qName, "#", tierExchange, false, nil); err != nil {
		return fmt.Errorf("retry queue bind (%s): %w", qName, err)
	}
	return nil
}

func retryTier(nextAttempt int) string {
	switch {
	case nextAttempt <= 1:
		return "10s"
	case nextAttempt == 2:
		return "1m"
	default:
		return "10m"
	}
}
