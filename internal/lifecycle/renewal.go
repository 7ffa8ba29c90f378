package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zapdesk/zapdesk/internal/idgen"
	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
)

// NotifyUpcomingDue warns active tenants whose renewal falls within the next
// three days. The schedule is discrete: a warning fires only when the rounded
// days-until-due is exactly 1, 2 or 3, and the dedup ledger suppresses repeats
// within the configured window.
func (e *Engine) NotifyUpcomingDue(ctx context.Context) error {
	now := time.Now()
	candidates, err := e.tenants.ListDueWithin(ctx, now, dueNotifyWindow)
	if err != nil {
		return fmt.Errorf("upcoming-due pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		days := DaysUntil(now, t.NextDueDate)
		if days < 1 || days > 3 {
			continue
		}

		log := logging.Tenant(e.logger, t.ID)
		sent, err := e.notifier.Send(ctx, t.ID, t.Email, notify.KindExpirationWarning, days, map[string]string{
			"daysUntilDue": strconv.Itoa(days),
			"dueDate":      t.NextDueDate.Format("2006-01-02"),
		})
		if err != nil {
			log.Warn("upcoming-due notification failed", "daysUntilDue", days, "error", err)
			continue
		}
		if sent {
			log.Info("upcoming-due notification sent", "daysUntilDue", days)
		}
	}
	return nil
}

// CreateRenewalCharges creates a gateway charge for each active tenant whose
// renewal is inside the notify window and has no pending charge yet. Gated by
// the renewal-charges flag, off by default.
func (e *Engine) CreateRenewalCharges(ctx context.Context) error {
	if !e.opts.RenewalCharges {
		return nil
	}

	now := time.Now()
	candidates, err := e.tenants.ListDueWithin(ctx, now, dueNotifyWindow)
	if err != nil {
		return fmt.Errorf("renewal-charge pass: list candidates: %w", err)
	}

	for _, t := range candidates {
		log := logging.Tenant(e.logger, t.ID)

		pending, err := e.payments.HasPendingFor(ctx, t.ID, t.NextDueDate)
		if err != nil {
			log.Warn("renewal charge: pending lookup failed", "error", err)
			continue
		}
		if pending {
			continue
		}

		pl, err := e.plans.Get(ctx, t.PlanID)
		if err != nil {
			log.Warn("renewal charge: plan lookup failed", "plan", t.PlanID, "error", err)
			continue
		}

		charge, err := e.gateway.CreateCharge(ctx, t.AsaasCustomerID, pl.PriceCents, t.NextDueDate)
		if err != nil {
			log.Warn("renewal charge: gateway create failed", "error", err)
			continue
		}

		charge.ID = idgen.WithPrefix("pay_")
		charge.TenantID = t.ID
		if err := e.payments.Create(ctx, charge); err != nil {
			log.Warn("renewal charge: local record failed",
				"gatewayPaymentId", charge.GatewayPaymentID, "error", err)
			continue
		}
		metrics.RenewalChargesTotal.Inc()
		log.Info("renewal charge created",
			"gatewayPaymentId", charge.GatewayPaymentID,
			"amountCents", charge.AmountCents,
			"dueDate", charge.DueDate.Format("2006-01-02"),
		)
	}
	return nil
}
