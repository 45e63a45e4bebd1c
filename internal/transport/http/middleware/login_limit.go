package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

type RateLimiter interface {
	AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LoginLimit throttles login attempts per client IP with a shared fixed window.
// A nil limiter disables it.
func LoginLimit(rl RateLimiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, _ := rl.AllowRequest(r.Context(), "login:"+ClientIP(r), limit, window)
			if !ok {
				w.Header().Set("Retry-After", retryAfter(window))
				response.Err(w, r, domain.ErrRateLimited("too many login attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
