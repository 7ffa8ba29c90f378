package billing

import (
	"context"
	"time"
)

// Store abstracts payment persistence.
type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)

	// HasSettled reports whether any payment for the tenant is confirmed or
	// received. This is the deletion safety gate.
	HasSettled(ctx context.Context, tenantID string) (bool, error)

	// HasPendingFor reports whether a pending charge already exists for the
	// tenant and due date, so renewal-charge creation is idempotent.
	HasPendingFor(ctx context.Context, tenantID string, dueDate time.Time) (bool, error)

	ListByTenant(ctx context.Context, tenantID string) ([]*Payment, error)
}
