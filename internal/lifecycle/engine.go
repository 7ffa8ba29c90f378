// Package lifecycle implements the tenant lifecycle and subscription
// enforcement engine: the periodic passes that expire trials, enforce payment
// deadlines, apply scheduled downgrades, stage deletion warnings and
// permanently remove tenants whose grace period has elapsed.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zapdesk/zapdesk/internal/billing"
	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/messenger"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/plan"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

// Discrete notification schedules. Upcoming-due warnings fire at 1–3 days
// before renewal; deletion warnings at 7/5/3/1 days before purge.
const (
	dueNotifyWindow     = 3 * 24 * time.Hour
	deletionWarnHorizon = 7 * 24 * time.Hour
)

var deletionWarnDays = [...]int{7, 5, 3, 1}

// Options tune the engine's time windows and feature flags.
type Options struct {
	Grace          time.Duration // blocked → deleted window
	RenewalTerm    time.Duration // due-date extension on downgrade apply
	RenewalCharges bool          // create gateway charges for upcoming renewals
}

// Engine holds the collaborators every pass operates through. Tenants are
// processed sequentially, one at a time; a per-tenant failure is logged and
// never aborts the pass.
type Engine struct {
	tenants  tenant.Store
	plans    plan.Store
	payments billing.Store
	gateway  billing.Gateway
	notifier *notify.Service
	provider messenger.Provider
	logger   *slog.Logger
	opts     Options
}

// NewEngine creates a lifecycle engine.
func NewEngine(
	tenants tenant.Store,
	plans plan.Store,
	payments billing.Store,
	gateway billing.Gateway,
	notifier *notify.Service,
	provider messenger.Provider,
	logger *slog.Logger,
	opts Options,
) *Engine {
	if opts.Grace <= 0 {
		opts.Grace = 20 * 24 * time.Hour
	}
	if opts.RenewalTerm <= 0 {
		opts.RenewalTerm = 30 * 24 * time.Hour
	}
	return &Engine{
		tenants:  tenants,
		plans:    plans,
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
		provider: provider,
		logger:   logger,
		opts:     opts,
	}
}

// RunBillingPass runs the payment-side components in their required order:
// upcoming-due notifications, then scheduled downgrades, then overdue
// blocking, then renewal-charge creation. Each component lists its own
// candidates, so a list failure in one does not poison the others.
func (e *Engine) RunBillingPass(ctx context.Context) error {
	return errors.Join(
		e.NotifyUpcomingDue(ctx),
		e.ApplyScheduledDowngrades(ctx),
		e.BlockOverdue(ctx),
		e.CreateRenewalCharges(ctx),
	)
}

// RunRetentionPass runs the trial and retention components in order: trial
// expiry, deletion warnings, then the deletion sweep.
func (e *Engine) RunRetentionPass(ctx context.Context) error {
	return errors.Join(
		e.ExpireTrials(ctx),
		e.DispatchDeletionWarnings(ctx),
		e.SweepDeletions(ctx),
	)
}

// block transitions a tenant into blocked, recomputing the deletion deadline
// from this block event, and sends a best-effort "blocked" notification. The
// state write is one statement; the notification never gates it.
func (e *Engine) block(ctx context.Context, t *tenant.Tenant, now time.Time, reason string) error {
	deleteAt := now.Add(e.opts.Grace)
	if err := e.tenants.Block(ctx, t.ID, now, deleteAt); err != nil {
		return err
	}
	metrics.TenantsBlockedTotal.WithLabelValues(reason).Inc()

	log := logging.Tenant(e.logger, t.ID)
	if _, err := e.notifier.Send(ctx, t.ID, t.Email, notify.KindBlocked, 0, map[string]string{
		"reason":          reason,
		"willBeDeletedAt": deleteAt.Format(time.RFC3339),
	}); err != nil {
		log.Warn("blocked notification failed", "reason", reason, "error", err)
	}
	return nil
}
