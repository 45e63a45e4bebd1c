package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/domain"
)

func TestTakeReturn_SkipsStaleReturns(t *testing.T) {
	returns := make(chan amqp.Return, 4)
	returns <- amqp.Return{MessageId: "old-1", RoutingKey: "notify.contact"}
	returns <- amqp.Return{MessageId: "n-2", RoutingKey: "notify.prayer_request", ReplyCode: 312}
	returns <- amqp.Return{MessageId: "old-3"}

	r, ok := takeReturn(returns, "n-2")
	require.True(t, ok)
	assert.Equal(t, uint16(312), r.ReplyCode)
	assert.Equal(t, "notify.prayer_request", r.RoutingKey)
	assert.Len(t, returns, 0, "buffer is drained")
}

func TestTakeReturn_NoMatch(t *testing.T) {
	returns := make(chan amqp.Return, 2)
	returns <- amqp.Return{MessageId: "old-1"}

	_, ok := takeReturn(returns, "n-9")
	assert.False(t, ok)
	assert.Len(t, returns, 0)

	_, ok = takeReturn(returns, "n-9")
	assert.False(t, ok, "empty buffer")
}

func TestTakeReturn_ClosedChannel(t *testing.T) {
	returns := make(chan amqp.Return, 1)
	returns <- amqp.Return{MessageId: "n-1"}
	close(returns)

	_, ok := takeReturn(returns, "n-1")
	assert.True(t, ok)
	_, ok = takeReturn(returns, "n-1")
	assert.False(t, ok)
}

func TestAwaitConfirm_RequiresConfirmMode(t *testing.T) {
	err := awaitConfirm(context.Background(), nil, nil, "n-1")
	assert.ErrorContains(t, err, "confirm mode")
}

func TestEnqueue_RejectsMissingID(t *testing.T) {
	p := &Publisher{}
	err := p.Enqueue(context.Background(), domain.Notification{Kind: domain.NotifyContactMessage})
	assert.ErrorContains(t, err, "missing notification id")
}
