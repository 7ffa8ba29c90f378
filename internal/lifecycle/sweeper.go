package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/metrics"
)

// SweepDeletions permanently removes blocked tenants whose grace period has
// elapsed. The sweep is irreversible, so it is double-gated: the candidate
// query excludes tenants with a settled payment (Postgres enforces this in
// SQL), and the engine re-checks the payment store before purging. A settled
// payment appearing during the grace period is a normal situation, not an
// error — the tenant simply never reaches the purge path.
func (e *Engine) SweepDeletions(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListPurgeable(ctx, now)
	if err != nil {
		return fmt.Errorf("deletion sweep: list candidates: %w", err)
	}

	purged := 0
	for _, t := range candidates {
		log := logging.Tenant(e.logger, t.ID)

		settled, err := e.payments.HasSettled(ctx, t.ID)
		if err != nil {
			log.Warn("sweep: settled-payment check failed, skipping tenant", "error", err)
			continue
		}
		if settled {
			// A payment landed during the grace period; reactivation is the
			// payment flow's job, deletion is simply off the table.
			log.Info("sweep: tenant has a settled payment, not deleting")
			continue
		}

		e.teardownInstances(ctx, t.ID)

		if err := e.tenants.Purge(ctx, t.ID); err != nil {
			log.Warn("sweep: purge failed", "error", err)
			continue
		}
		purged++
		metrics.TenantsPurgedTotal.Inc()
		log.Info("tenant permanently deleted",
			"blockedAt", t.BlockedAt,
			"deadline", t.WillBeDeletedAt,
		)
	}

	if purged > 0 {
		e.logger.Info("deletion sweep complete", "purged", purged, "candidates", len(candidates))
	}
	return nil
}

// teardownInstances deletes the tenant's messaging endpoints at the provider.
// Local deletion must not be blocked by an unreachable provider, so failures
// are logged and counted but never propagated.
func (e *Engine) teardownInstances(ctx context.Context, tenantID string) {
	log := logging.Tenant(e.logger, tenantID)

	instances, err := e.tenants.ListInstances(ctx, tenantID)
	if err != nil {
		log.Warn("sweep: listing whatsapp instances failed, skipping teardown", "error", err)
		return
	}

	for _, inst := range instances {
		if err := e.provider.DeleteInstance(ctx, inst.Token, inst.ProxyURL); err != nil {
			metrics.ProviderTeardownErrors.Inc()
			log.Warn("sweep: provider instance teardown failed",
				"instance", inst.ID, "error", err)
			continue
		}
		log.Info("sweep: provider instance deleted", "instance", inst.ID)
	}
}
