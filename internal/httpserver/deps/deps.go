package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/murmur/internal/auth"
	"github.com/MrSnakeDoc/murmur/internal/domain"
	"github.com/MrSnakeDoc/murmur/internal/logger"
	"github.com/MrSnakeDoc/murmur/internal/ratelimit"
	sqlitestore "github.com/MrSnakeDoc/murmur/internal/store/sqlite"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Thoughts *domain.ThoughtService // submission + listing logic
	Policy   *domain.ContentPolicy  // active denylist, swapped by the reloader
	Resolver auth.Resolver          // bearer-token identity resolution

	PostLimiter *ratelimit.Limiter // thought submissions
	ListLimiter *ratelimit.Limiter // feed listings

	Store       *sqlitestore.Store // thought persistence, also pinged by /infra
	RedisClient *redis.Client      // identity cache connection; nil when disabled

	TrustProxy          bool          // true if running behind a trusted reverse proxy
	AdminCIDRS          []string      // IPs allowed on healthz/readyz/infra/reload (empty = open)
	MaxBodyBytes        int64         // POST body cap
	PolicyReloadTrigger chan struct{} // manual policy reload (nil if no policy file)
}
