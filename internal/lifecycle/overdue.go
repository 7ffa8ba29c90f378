package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/zapdesk/zapdesk/internal/logging"
)

// BlockOverdue blocks active tenants whose due date has passed. It runs after
// the downgrade evaluation in the billing pass: a tenant blocked there has
// already left the active set and is excluded by the query guard.
func (e *Engine) BlockOverdue(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("overdue pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		log := logging.Tenant(e.logger, t.ID)
		if err := e.block(ctx, t, now, "payment_overdue"); err != nil {
			log.Warn("failed to block overdue tenant", "error", err)
			continue
		}
		log.Info("payment overdue, tenant blocked",
			"dueDate", t.NextDueDate,
			"willBeDeletedAt", now.Add(e.opts.Grace),
		)
	}
	return nil
}
