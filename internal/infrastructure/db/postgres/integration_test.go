//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
)

func startPostgres(t *testing.T) *Repos {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	c, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		tcpostgres.WithDatabase("church"),
		tcpostgres.WithUsername("church"),
		tcpostgres.WithPassword("church"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, config.DBConfig{DSN: dsn, MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxIdle: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return New(db)
}

func TestPostgres_ConcurrentRegistrationRespectsCapacity(t *testing.T) {
	repos := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	capacity := 3
	e := &domain.Event{
		ID: uuid.NewString(), Title: "Retreat", Description: "Weekend", Date: now.Add(72 * time.Hour),
		Location: "Camp", Category: domain.CategoryFellowship, MaxAttendees: &capacity,
		IsPublished: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Events.Create(ctx, e))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		full    int
		callers = 10
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repos.Events.AddAttendee(ctx, e.ID, domain.Attendee{
				Name: "Guest", Email: fmt.Sprintf("guest%d@example.org", i), RegisteredAt: time.Now().UTC(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.HasCode(err, domain.CodeConflict):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, ok)
	assert.Equal(t, callers-capacity, full)

	got, err := repos.Events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, capacity)
}

func TestPostgres_SubscriptionReactivation(t *testing.T) {
	repos := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s := &domain.Subscription{ID: uuid.NewString(), Email: "Member@Example.org", IsActive: true, SubscribedAt: now}
	require.NoError(t, repos.Subscriptions.Create(ctx, s))

	err := repos.Subscriptions.Create(ctx, &domain.Subscription{ID: uuid.NewString(), Email: "member@example.org", IsActive: true, SubscribedAt: now})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	s.Deactivate(now)
	require.NoError(t, repos.Subscriptions.Update(ctx, s))
	n, err := repos.Subscriptions.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := repos.Subscriptions.GetByEmail(ctx, "MEMBER@example.org")
	require.NoError(t, err)
	got.Reactivate(now.Add(time.Hour), "Member")
	require.NoError(t, repos.Subscriptions.Update(ctx, got))

	n, err = repos.Subscriptions.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, s.ID, got.ID)
}
