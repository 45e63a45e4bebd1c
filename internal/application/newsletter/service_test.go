package newsletter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/application/newsletter"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/infrastructure/db/memory"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type outbox struct{ sent []domain.Notification }

func (o *outbox) Enqueue(_ context.Context, n domain.Notification) error {
	o.sent = append(o.sent, n)
	return nil
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	ob := &outbox{}
	svc := newsletter.NewService(memory.New().Subscriptions, ob, clk)

	sub, created, err := svc.Subscribe(ctx, " Ann@Example.com ", "Ann")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ann@example.com", sub.Email)
	require.Len(t, ob.sent, 1)
	assert.Equal(t, domain.NotifyNewsletterWelcome, ob.sent[0].Kind)

	_, _, err = svc.Subscribe(ctx, "ann@example.com", "")
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	off, err := svc.Unsubscribe(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	require.NotNil(t, off.UnsubscribedAt)

	// unsubscribing twice is a no-op
	again, err := svc.Unsubscribe(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	clk.t = clk.t.Add(30 * 24 * time.Hour)
	back, created, err := svc.Subscribe(ctx, "ann@example.com", "Ann B")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sub.ID, back.ID)
	assert.True(t, back.IsActive)
	assert.Nil(t, back.UnsubscribedAt)
	assert.Equal(t, "Ann B", back.Name)
	assert.True(t, back.SubscribedAt.Equal(clk.t))
	assert.Len(t, ob.sent, 2)
}

func TestUnsubscribe_Unknown(t *testing.T) {
	svc := newsletter.NewService(memory.New().Subscriptions, &outbox{}, &clock{t: time.Now()})
	_, err := svc.Unsubscribe(context.Background(), "nobody@example.com")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}
