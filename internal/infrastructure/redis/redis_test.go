package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestAllowRequest_FixedWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.AllowRequest(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := c.AllowRequest(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = c.AllowRequest(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowRequest_ArmsExpiryOnFirstHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AllowRequest(ctx, "login:5.6.7.8", 1, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl := mr.TTL(rateLimitKey + "login:5.6.7.8")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)

	// later hits in the same window leave the expiry alone
	mr.FastForward(10 * time.Second)
	ok, err = c.AllowRequest(ctx, "login:5.6.7.8", 1, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.LessOrEqual(t, mr.TTL(rateLimitKey+"login:5.6.7.8"), 20*time.Second)
}

func TestAllowRequest_RearmsCounterWithoutExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	// a counter left behind with no TTL
	require.NoError(t, mr.Set(rateLimitKey+"login:9.9.9.9", "50"))

	ok, err := c.AllowRequest(ctx, "login:9.9.9.9", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, mr.TTL(rateLimitKey+"login:9.9.9.9"), time.Duration(0))

	mr.FastForward(time.Minute + time.Second)
	ok, err = c.AllowRequest(ctx, "login:9.9.9.9", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowRequest_FailsOpen(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	ok, err := c.AllowRequest(context.Background(), "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeenAndMarkSent(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	seen, err := c.Seen(ctx, "n-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.MarkSent(ctx, "n-1", time.Hour))
	require.NoError(t, c.MarkSent(ctx, "n-1", time.Hour))

	seen, err = c.Seen(ctx, "n-1")
	require.NoError(t, err)
	assert.True(t, seen)

	mr.FastForward(2 * time.Hour)
	seen, err = c.Seen(ctx, "n-1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = c.Seen(ctx, "")
	assert.Error(t, err)
}

func TestDashboardStatsCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	in := &domain.DashboardStats{
		TotalSermons: 5,
		TotalEvents:  6,
		RecentContactMessages: []domain.ContactMessage{
			{ID: "c-1", Subject: "Hello", Status: domain.ContactNew},
		},
	}
	require.NoError(t, c.SetStats(ctx, in, 30*time.Second))

	got, ok, err := c.GetStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, got.TotalSermons)
	assert.Equal(t, 6, got.TotalEvents)
	require.Len(t, got.RecentContactMessages, 1)
	assert.Equal(t, "Hello", got.RecentContactMessages[0].Subject)

	mr.FastForward(31 * time.Second)
	_, ok, err = c.GetStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
