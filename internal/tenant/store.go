package tenant

import (
	"context"
	"time"

	"github.com/zapdesk/zapdesk/internal/plan"
)

// Store abstracts tenant persistence for the lifecycle engine.
//
// The List* methods carry the pass eligibility guards in the query itself so
// that re-running a pass is a no-op for already-processed tenants.
type Store interface {
	Create(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error

	// ListTrialExpired returns trial tenants whose trial has elapsed and that
	// have not been blocked yet.
	ListTrialExpired(ctx context.Context, now time.Time) ([]*Tenant, error)

	// ListDueWithin returns active tenants whose next due date falls in
	// (now, now+window].
	ListDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]*Tenant, error)

	// ListOverdue returns active tenants whose next due date has passed.
	ListOverdue(ctx context.Context, now time.Time) ([]*Tenant, error)

	// ListPendingDowngrades returns tenants with a scheduled plan change whose
	// renewal boundary has arrived, regardless of status.
	ListPendingDowngrades(ctx context.Context, now time.Time) ([]*Tenant, error)

	// ListDeletionPending returns blocked tenants whose deletion deadline falls
	// in [now, now+horizon].
	ListDeletionPending(ctx context.Context, now time.Time, horizon time.Duration) ([]*Tenant, error)

	// ListPurgeable returns blocked tenants past their deletion deadline.
	// The Postgres implementation additionally excludes tenants with a settled
	// payment at the query level; the engine re-checks regardless.
	ListPurgeable(ctx context.Context, now time.Time) ([]*Tenant, error)

	// Block transitions a tenant to blocked. blockedAt and deleteAt are written
	// together in a single statement.
	Block(ctx context.Context, id string, blockedAt, deleteAt time.Time) error

	// ApplyDowngrade atomically sets the new plan, clears the scheduled change,
	// extends the due date and refreshes the cached limits.
	ApplyDowngrade(ctx context.Context, id, planID string, nextDue time.Time, limits plan.Limits) error

	// ClearScheduledDowngrade drops a scheduled plan change without applying it.
	ClearScheduledDowngrade(ctx context.Context, id string) error

	// Usage derives the tenant's current resource consumption.
	Usage(ctx context.Context, id string) (Usage, error)

	// ListInstances returns the tenant's WhatsApp endpoints for provider teardown.
	ListInstances(ctx context.Context, id string) ([]Instance, error)

	// Purge permanently removes the tenant and all dependent rows.
	Purge(ctx context.Context, id string) error
}
