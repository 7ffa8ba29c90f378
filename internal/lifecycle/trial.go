package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/zapdesk/zapdesk/internal/logging"
)

// ExpireTrials blocks every trial tenant whose trial has elapsed. The query
// guard (blocked_at IS NULL) makes re-runs a no-op for tenants already
// processed, so the pass is idempotent.
func (e *Engine) ExpireTrials(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListTrialExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("trial pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		log := logging.Tenant(e.logger, t.ID)
		if err := e.block(ctx, t, now, "trial_expired"); err != nil {
			log.Warn("failed to block expired trial", "error", err)
			continue
		}
		log.Info("trial expired, tenant blocked",
			"trialEndedAt", t.TrialEndsAt,
			"willBeDeletedAt", now.Add(e.opts.Grace),
		)
	}
	return nil
}
