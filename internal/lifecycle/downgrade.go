package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/plan"
)

// ApplyScheduledDowngrades evaluates every tenant whose scheduled plan change
// has reached its renewal boundary. The target plan's limits are re-validated
// against current usage here, at enforcement time — the first validation, at
// scheduling time, does not protect against usage growth in between.
//
// A fitting downgrade is applied: new plan, cleared schedule, due date pushed
// out one term, cached limits refreshed. A downgrade that no longer fits is
// cancelled and the tenant is blocked; either way the scheduled change is
// cleared by the end of the pass.
func (e *Engine) ApplyScheduledDowngrades(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListPendingDowngrades(ctx, now)
	if err != nil {
		return fmt.Errorf("downgrade pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		log := logging.Tenant(e.logger, t.ID)

		target, err := e.plans.Get(ctx, *t.PlanChangeScheduledID)
		if err != nil {
			if errors.Is(err, plan.ErrPlanNotFound) {
				// The target plan was removed after scheduling; drop the change.
				log.Warn("scheduled downgrade target no longer exists, cancelling",
					"targetPlan", *t.PlanChangeScheduledID)
				if err := e.tenants.ClearScheduledDowngrade(ctx, t.ID); err != nil {
					log.Warn("failed to clear scheduled downgrade", "error", err)
				}
				continue
			}
			log.Warn("downgrade: plan lookup failed", "targetPlan", *t.PlanChangeScheduledID, "error", err)
			continue
		}

		usage, err := e.tenants.Usage(ctx, t.ID)
		if err != nil {
			log.Warn("downgrade: usage lookup failed", "error", err)
			continue
		}

		if violations := CheckPlanFit(usage, target); len(violations) > 0 {
			e.rejectDowngrade(ctx, t.ID, target.ID, violations, now)
			continue
		}

		nextDue := now.Add(e.opts.RenewalTerm)
		if err := e.tenants.ApplyDowngrade(ctx, t.ID, target.ID, nextDue, target.Limits()); err != nil {
			log.Warn("downgrade: apply failed", "targetPlan", target.ID, "error", err)
			continue
		}
		metrics.DowngradesTotal.WithLabelValues("applied").Inc()
		log.Info("scheduled downgrade applied",
			"fromPlan", t.PlanID,
			"toPlan", target.ID,
			"nextDueDate", nextDue.Format("2006-01-02"),
		)
	}
	return nil
}

// rejectDowngrade blocks a tenant whose usage outgrew the target plan and
// clears the scheduled change. The tenant must shed resources or pick another
// plan manually.
func (e *Engine) rejectDowngrade(ctx context.Context, tenantID, targetPlanID string, violations []LimitViolation, now time.Time) {
	log := logging.Tenant(e.logger, tenantID)
	details := make([]string, len(violations))
	for i, v := range violations {
		details[i] = v.String()
	}
	log.Info("downgrade rejected, usage exceeds target plan limits",
		"targetPlan", targetPlanID,
		"violations", details,
	)
	metrics.DowngradesTotal.WithLabelValues("rejected").Inc()

	t, err := e.tenants.Get(ctx, tenantID)
	if err != nil {
		log.Warn("downgrade reject: tenant lookup failed", "error", err)
		return
	}
	if err := e.block(ctx, t, now, "downgrade_rejected"); err != nil {
		log.Warn("downgrade reject: block failed", "error", err)
		return
	}
	if err := e.tenants.ClearScheduledDowngrade(ctx, tenantID); err != nil {
		log.Warn("downgrade reject: failed to clear scheduled change", "error", err)
	}
}
