package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/murmur/internal/logger"
	"github.com/MrSnakeDoc/murmur/internal/ratelimit"
)

// BucketSweeper periodically evicts idle rate-limit buckets so the bucket
// tables stay bounded under many distinct client IPs. Sweeping never
// changes the limiter's decision for a key inside a live window.
type BucketSweeper struct {
	limiters []*ratelimit.Limiter
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewBucketSweeper creates a sweeper over the given limiter instances.
func NewBucketSweeper(limiters []*ratelimit.Limiter, log logger.Logger, interval time.Duration) *BucketSweeper {
	return &BucketSweeper{
		limiters: limiters,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep process.
func (bs *BucketSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(bs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bs.Sweep(time.Now())
			case <-bs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper.
func (bs *BucketSweeper) Stop() {
	close(bs.stopCh)
}

// Sweep runs one eviction pass over every limiter.
func (bs *BucketSweeper) Sweep(now time.Time) {
	evicted := 0
	remaining := 0
	for _, l := range bs.limiters {
		evicted += l.Sweep(now)
		remaining += l.Len()
	}

	if evicted > 0 {
		bs.logger.Info("rate-limit bucket sweep completed",
			logger.Int("evicted", evicted),
			logger.Int("remaining", remaining))
	} else {
		bs.logger.Debug("no idle rate-limit buckets to evict")
	}
}
