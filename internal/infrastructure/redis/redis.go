package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
)

const (
	dashboardKey   = "church:dashboard:stats"
	rateLimitKey   = "church:ratelimit:"
	notifySentKey  = "church:notify:sent:"
	defaultSentTTL = 24 * time.Hour
)

type Cache struct {
	Client *redis.Client
}

func New(cfg config.RedisConfig) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB,
	})
	return &Cache{Client: rdb}
}

// Ping checks connectivity with a short timeout.
func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// allowScript counts a hit and arms the window expiry in one round trip.
// A counter found without a TTL is re-armed so it can never pin a client.
var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 or redis.call("PTTL", KEYS[1]) < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// AllowRequest: fixed window counter per key. Redis errors fail open.
func (c *Cache) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, err := allowScript.Run(ctx, c.Client, []string{rateLimitKey + key}, window.Milliseconds()).Int64()
	if err != nil {
		return true, nil
	}
	return count <= int64(limit), nil
}

// Seen reports whether a notification key was already delivered.
func (c *Cache) Seen(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("empty key")
	}
	n, err := c.Client.Exists(ctx, notifySentKey+key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkSent records a delivered notification key. Marking twice is harmless.
func (c *Cache) MarkSent(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if ttl <= 0 {
		ttl = defaultSentTTL
	}
	return c.Client.Set(ctx, notifySentKey+key, "1", ttl).Err()
}

func (c *Cache) GetStats(ctx context.Context) (*domain.DashboardStats, bool, error) {
	raw, err := c.Client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var s domain.DashboardStats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return &s, true, nil
}

func (c *Cache) SetStats(ctx context.Context, s *domain.DashboardStats, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, dashboardKey, raw, ttl).Err()
}
