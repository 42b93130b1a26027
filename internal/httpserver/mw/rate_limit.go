package mw

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/murmur/internal/ratelimit"
	"github.com/MrSnakeDoc/murmur/internal/utils"
)

// RateLimit guards a route with an injected limiter instance, keyed by
// client IP. Each route gets its own limiter so creation and listing can
// carry distinct (limit, window) policies.
func RateLimit(l *ratelimit.Limiter, trustProxy bool) func(http.Handler) http.Handler {
	limitStr := strconv.Itoa(l.Limit())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			l.SweepMaybe(now)

			key := utils.ClientIP(r, trustProxy)

			ok, remaining, retry := l.Allow(key, now)
			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"message": "Rate limit exceeded",
						"type":    "rate_limit_error",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
