package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/application/dashboard"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/infrastructure/db/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type brokenSermons struct{}

func (brokenSermons) Count(context.Context) (int, error) { return 0, errors.New("db down") }

type memCache struct {
	stats *domain.DashboardStats
	gets  int
	sets  int
}

func (c *memCache) GetStats(context.Context) (*domain.DashboardStats, bool, error) {
	c.gets++
	return c.stats, c.stats != nil, nil
}

func (c *memCache) SetStats(_ context.Context, s *domain.DashboardStats, _ time.Duration) error {
	c.sets++
	c.stats = s
	return nil
}

var now = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func fixture(t *testing.T) dashboard.Deps {
	t.Helper()
	ctx := context.Background()
	r := memory.New()

	for i := 0; i < 7; i++ {
		p := &domain.PrayerRequest{ID: fmt.Sprintf("p%d", i), Request: "r", CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		p.IsAnswered = i < 2
		require.NoError(t, r.Prayers.Create(ctx, p))
	}
	for i, d := range []time.Duration{-24 * time.Hour, time.Hour, 48 * time.Hour} {
		require.NoError(t, r.Events.Create(ctx, &domain.Event{ID: fmt.Sprintf("e%d", i), Title: "e", Date: now.Add(d), IsPublished: true}))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, r.Sermons.Create(ctx, &domain.Sermon{ID: fmt.Sprintf("s%d", i), Title: "s", Date: now}))
	}
	require.NoError(t, r.Subscriptions.Create(ctx, &domain.Subscription{ID: "sub1", Email: "a@x.org", IsActive: true}))
	require.NoError(t, r.Subscriptions.Create(ctx, &domain.Subscription{ID: "sub2", Email: "b@x.org"}))
	for i := 0; i < 6; i++ {
		require.NoError(t, r.Contacts.Create(ctx, &domain.ContactMessage{ID: fmt.Sprintf("c%d", i), Status: domain.ContactNew, CreatedAt: now.Add(time.Duration(i) * time.Minute)}))
	}

	return dashboard.Deps{
		Prayers:     r.Prayers,
		Events:      r.Events,
		Sermons:     r.Sermons,
		Subscribers: r.Subscriptions,
		Contacts:    r.Contacts,
		Clock:       fixedClock{now},
	}
}

func TestStats(t *testing.T) {
	s, err := dashboard.NewService(fixture(t)).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, s.TotalPrayerRequests)
	assert.Equal(t, 5, s.UnansweredPrayerRequests)
	assert.Equal(t, 3, s.TotalEvents)
	assert.Equal(t, 2, s.UpcomingEvents)
	assert.Equal(t, 2, s.TotalSermons)
	assert.Equal(t, 1, s.ActiveSubscribers)

	require.Len(t, s.RecentPrayerRequests, domain.DashboardRecentLimit)
	assert.Equal(t, "p6", s.RecentPrayerRequests[0].ID)
	require.Len(t, s.RecentContactMessages, domain.DashboardRecentLimit)
	assert.Equal(t, "c5", s.RecentContactMessages[0].ID)
}

func TestStats_OneFailureFailsAll(t *testing.T) {
	d := fixture(t)
	d.Sermons = brokenSermons{}

	s, err := dashboard.NewService(d).Stats(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)
}

func TestStats_Cache(t *testing.T) {
	d := fixture(t)
	cache := &memCache{}
	d.Cache = cache
	d.CacheTTL = time.Minute
	svc := dashboard.NewService(d)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// a broken store is not consulted while the cache is warm
	d.Sermons = brokenSermons{}
	svc = dashboard.NewService(d)
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}
