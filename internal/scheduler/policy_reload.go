package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/murmur/internal/domain"
	"github.com/MrSnakeDoc/murmur/internal/logger"
	policysource "github.com/MrSnakeDoc/murmur/internal/sources/policy"
)

// PolicyReloader handles periodic reloading of the content-policy file.
type PolicyReloader struct {
	loader        *policysource.Loader
	policy        *domain.ContentPolicy
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewPolicyReloader creates a new policy reloader.
func NewPolicyReloader(
	policyFile string,
	policy *domain.ContentPolicy,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *PolicyReloader {
	return &PolicyReloader{
		loader:        policysource.NewLoader(policyFile),
		policy:        policy,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the policy once, then begins the periodic reload loop.
func (pr *PolicyReloader) Start(ctx context.Context) error {
	if err := pr.Reload(ctx); err != nil {
		return fmt.Errorf("initial policy load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload content policy",
						logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual policy reload triggered")
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload content policy",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (pr *PolicyReloader) Stop() {
	close(pr.stopCh)
}

// Reload loads the policy file and swaps the active denylist.
// A failed load keeps the previous denylist in place.
func (pr *PolicyReloader) Reload(ctx context.Context) error {
	terms, err := pr.loader.Load()
	if err != nil {
		return err
	}

	pr.policy.Replace(terms)
	pr.logger.Info("content policy reloaded",
		logger.Int("terms", len(terms)))
	return nil
}
