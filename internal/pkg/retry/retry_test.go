package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	assert.Equal(t, 100*time.Millisecond, CalculateDelay(0, cfg))
	assert.Equal(t, 200*time.Millisecond, CalculateDelay(1, cfg))
	assert.Equal(t, 800*time.Millisecond, CalculateDelay(3, cfg))
	assert.Equal(t, time.Second, CalculateDelay(4, cfg))
	assert.Equal(t, time.Second, CalculateDelay(80, cfg))
}

func TestDo(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	boom := errors.New("boom")

	t.Run("succeeds_after_retries", func(t *testing.T) {
		calls, retries := 0, 0
		err := Do(context.Background(), cfg, nil, func(int, error) { retries++ }, func() error {
			calls++
			if calls < 3 {
				return boom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("gives_up", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), cfg, nil, nil, func() error { calls++; return boom })
		require.ErrorIs(t, err, boom)
		assert.Equal(t, cfg.MaxRetries+1, calls)
	})

	t.Run("non_retryable_stops", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), cfg, func(error) bool { return false }, nil, func() error { calls++; return boom })
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("context_cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Do(ctx, Config{MaxRetries: 2, InitialDelay: time.Hour, MaxDelay: time.Hour}, nil, nil, func() error { return boom })
		require.ErrorIs(t, err, context.Canceled)
	})
}
