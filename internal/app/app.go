package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/murmur/internal/auth"
	"github.com/MrSnakeDoc/murmur/internal/config"
	"github.com/MrSnakeDoc/murmur/internal/domain"
	"github.com/MrSnakeDoc/murmur/internal/httpserver"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/logger"
	"github.com/MrSnakeDoc/murmur/internal/ratelimit"
	"github.com/MrSnakeDoc/murmur/internal/redis"
	"github.com/MrSnakeDoc/murmur/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/murmur/internal/store/redis"
	sqlitestore "github.com/MrSnakeDoc/murmur/internal/store/sqlite"
	"github.com/MrSnakeDoc/murmur/internal/utils"
	"github.com/MrSnakeDoc/murmur/internal/version"
)

type App struct {
	cfg            *config.Config
	logger         logger.Logger
	server         *httpserver.Server
	store          *sqlitestore.Store
	redisClient    *goredis.Client
	policyReloader *scheduler.PolicyReloader
	sweeper        *scheduler.BucketSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if unavailable
	store, err := sqlitestore.Open(cfg.DataDir)
	if err != nil {
		loggerClient.Errorf("Failed to open thought store: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("thought store opened",
		logger.String("data_dir", cfg.DataDir))

	// Content policy: built-in denylist until (and unless) a policy file loads.
	policy := domain.NewContentPolicy(nil)

	var policyReloader *scheduler.PolicyReloader
	var policyReloadTrigger chan struct{}
	if cfg.PolicyFile != "" {
		loggerClient.Info("policy file configured, initializing policy reloader",
			logger.String("file", cfg.PolicyFile))
		policyReloadTrigger = make(chan struct{}, 1)
		policyReloader = scheduler.NewPolicyReloader(
			cfg.PolicyFile,
			policy,
			loggerClient,
			cfg.PolicyReloadInterval,
			policyReloadTrigger,
		)
	} else {
		loggerClient.Info("no policy file configured, using built-in denylist")
	}

	// Per-endpoint rate limiters: distinct (limit, window) pairs.
	postLimiter := ratelimit.New(ratelimit.Config{
		Limit:         cfg.PostLimit,
		Window:        cfg.PostWindow,
		MaxEntries:    cfg.LimiterMaxEntries,
		SweepInterval: cfg.LimiterSweepInterval,
		IdleTTL:       cfg.LimiterIdleTTL,
	})
	listLimiter := ratelimit.New(ratelimit.Config{
		Limit:         cfg.ListLimit,
		Window:        cfg.ListWindow,
		MaxEntries:    cfg.LimiterMaxEntries,
		SweepInterval: cfg.LimiterSweepInterval,
		IdleTTL:       cfg.LimiterIdleTTL,
	})

	sweeper := scheduler.NewBucketSweeper(
		[]*ratelimit.Limiter{postLimiter, listLimiter},
		loggerClient,
		cfg.LimiterSweepInterval,
	)

	// Identity resolution: external auth service, optionally cached in Redis.
	var resolver auth.Resolver = auth.Disabled{}
	if cfg.AuthURL != "" {
		resolver = auth.NewHTTPResolver(cfg.AuthURL, cfg.AuthTimeout)
		loggerClient.Info("identity resolution enabled",
			logger.String("auth_url", cfg.AuthURL))
	} else {
		loggerClient.Info("no auth service configured, all requests are anonymous")
	}

	var redisClient *goredis.Client
	if cfg.RedisAddr != "" && cfg.AuthURL != "" {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		resolver = auth.NewCachedResolver(resolver, redisstore.NewStore(redisClient), cfg.IdentityCacheTTL, loggerClient)
		loggerClient.Info("identity cache enabled",
			logger.String("addr", cfg.RedisAddr),
			logger.Duration("ttl", cfg.IdentityCacheTTL))
	}

	thoughts := domain.NewThoughtService(store, policy, cfg.MaxListItems, nil)

	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		Thoughts:            thoughts,
		Policy:              policy,
		Resolver:            resolver,
		PostLimiter:         postLimiter,
		ListLimiter:         listLimiter,
		Store:               store,
		RedisClient:         redisClient,
		TrustProxy:          cfg.TrustProxy,
		AdminCIDRS:          cfg.AdminCIDRS,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		PolicyReloadTrigger: policyReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:            cfg,
		logger:         loggerClient,
		server:         server,
		store:          store,
		redisClient:    redisClient,
		policyReloader: policyReloader,
		sweeper:        sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting murmur v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("murmur %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start policy reloader (if a policy file is configured)
	if a.policyReloader != nil {
		if err := a.policyReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start policy reloader: %w", err)
		}
		a.logger.Info("policy reloader started",
			logger.Duration("interval", a.cfg.PolicyReloadInterval))
	}

	// Start rate-limit bucket sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bucket sweeper: %w", err)
	}
	a.logger.Info("bucket sweeper started",
		logger.Duration("interval", a.cfg.LimiterSweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.policyReloader != nil {
		a.policyReloader.Stop()
	}
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.MustClose(a.store)

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ murmur stopped cleanly")
	return nil
}
