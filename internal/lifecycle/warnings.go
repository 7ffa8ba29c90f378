package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/notify"
)

// DispatchDeletionWarnings sends staged reminders to blocked tenants
// approaching their deletion deadline. Warnings fire only at 7, 5, 3 and 1
// days remaining; the dedup ledger keeps each threshold to one send per window.
func (e *Engine) DispatchDeletionWarnings(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListDeletionPending(ctx, now, deletionWarnHorizon)
	if err != nil {
		return fmt.Errorf("deletion-warning pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		days := DaysUntil(now, *t.WillBeDeletedAt)
		if !warnDay(days) {
			continue
		}

		log := logging.Tenant(e.logger, t.ID)
		sent, err := e.notifier.Send(ctx, t.ID, t.Email, notify.KindDeletionWarning, days, map[string]string{
			"daysRemaining":   strconv.Itoa(days),
			"willBeDeletedAt": t.WillBeDeletedAt.Format("2006-01-02"),
		})
		if err != nil {
			log.Warn("deletion warning failed", "daysRemaining", days, "error", err)
			continue
		}
		if sent {
			log.Info("deletion warning sent", "daysRemaining", days)
		}
	}
	return nil
}

func warnDay(days int) bool {
	for _, d := range deletionWarnDays {
		if days == d {
			return true
		}
	}
	return false
}
