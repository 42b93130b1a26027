package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler timeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir string // directory holding the SQLite database

	PolicyFile           string        // path to policy.yaml (optional, empty = built-in denylist)
	PolicyReloadInterval time.Duration // interval to reload the policy file (default: 1h)

	// Rate limiting (fixed window, per client IP)
	PostLimit            int           // submissions per window (default: 5)
	PostWindow           time.Duration // submission window (default: 10m)
	ListLimit            int           // listings per window (default: 60)
	ListWindow           time.Duration // listing window (default: 1m)
	LimiterMaxEntries    int           // opportunistic sweep trigger per limiter
	LimiterSweepInterval time.Duration // periodic bucket sweep interval
	LimiterIdleTTL       time.Duration // evict buckets idle for this long

	MaxListItems int   // cap on listing results (0 = unlimited)
	MaxBodyBytes int64 // POST body size cap

	// Identity resolution
	AuthURL     string        // auth service base URL (optional, empty = anonymous only)
	AuthTimeout time.Duration // per-call timeout for the auth service

	// Redis identity cache (optional, empty addr = disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts
	IdentityCacheTTL    time.Duration // TTL for cached identity resolutions

	AllowedHosts []string // optional, restrict access to specific Host headers
	AdminCIDRS   []string // optional, restrict healthz/readyz/infra/reload to these IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MURMUR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MURMUR_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("MURMUR_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("MURMUR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MURMUR_PRETTY_LOG", true),

		// Storage
		DataDir: getenv("MURMUR_DATA_DIR", "./data"),

		// Content policy
		PolicyFile:           getenv("MURMUR_POLICY_FILE", ""), // Optional, empty = built-in denylist
		PolicyReloadInterval: mustDuration("MURMUR_POLICY_RELOAD_INTERVAL", time.Hour),

		// Rate limiting
		PostLimit:            getenvInt("MURMUR_POST_LIMIT", 5),
		PostWindow:           mustDuration("MURMUR_POST_WINDOW", 10*time.Minute),
		ListLimit:            getenvInt("MURMUR_LIST_LIMIT", 60),
		ListWindow:           mustDuration("MURMUR_LIST_WINDOW", time.Minute),
		LimiterMaxEntries:    getenvInt("MURMUR_LIMITER_MAX_ENTRIES", 10000),
		LimiterSweepInterval: mustDuration("MURMUR_LIMITER_SWEEP_INTERVAL", 5*time.Minute),
		LimiterIdleTTL:       mustDuration("MURMUR_LIMITER_IDLE_TTL", 30*time.Minute),

		MaxListItems: getenvInt("MURMUR_MAX_LIST_ITEMS", 200),
		MaxBodyBytes: int64(getenvInt("MURMUR_MAX_BODY_BYTES", 64<<10)),

		// Identity resolution
		AuthURL:     getenv("MURMUR_AUTH_URL", ""),
		AuthTimeout: mustDuration("MURMUR_AUTH_TIMEOUT", 3*time.Second),

		// Redis identity cache
		RedisAddr:           getenv("MURMUR_REDIS_ADDR", ""),
		RedisUser:           getenv("MURMUR_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("MURMUR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MURMUR_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		IdentityCacheTTL:    mustDuration("MURMUR_IDENTITY_CACHE_TTL", 5*time.Minute),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MURMUR_ALLOWED_HOSTS", "")),
		AdminCIDRS:   splitAndTrim(getenv("MURMUR_ADMIN_CIDRS", "")),
		TrustProxy:   mustBool("MURMUR_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
