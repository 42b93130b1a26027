package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
	Terms   *int   `json:"denylist_terms,omitempty"`
	Buckets *int   `json:"live_buckets,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports per-component health: the thought store, the identity
// cache, the content policy, and the rate limiters.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := checkDatabase(r.Context(), d)
		cacheStatus := checkIdentityCache(d)

		terms := d.Policy.Size()
		buckets := d.PostLimiter.Len() + d.ListLimiter.Len()

		components := map[string]componentStatus{
			"database":       dbStatus,
			"identity_cache": cacheStatus,
			"content_policy": {OK: true, Terms: &terms},
			"rate_limiters":  {OK: true, Buckets: &buckets},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if db, exists := components["database"]; exists && !db.OK {
		return "critical" // no database = no reads or writes
	}
	if cache, exists := components["identity_cache"]; exists && !cache.OK {
		return "degraded" // cache down = every token hits the auth service
	}
	return "nominal"
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:    false,
			Error: err.Error(),
		}
	}
	return componentStatus{OK: true}
}

func checkIdentityCache(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "identity-caching-off",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "identity-caching-off",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
