package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

func TestBlockOverdue_BlocksPastDueTenants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{Grace: 20 * 24 * time.Hour})

	f.addTenant(&tenant.Tenant{
		ID:          "t_late",
		Slug:        "late",
		Status:      tenant.StatusActive,
		NextDueDate: time.Now().Add(-time.Hour),
	})
	f.addTenant(&tenant.Tenant{
		ID:          "t_current",
		Slug:        "current",
		Status:      tenant.StatusActive,
		NextDueDate: time.Now().Add(5 * 24 * time.Hour),
	})

	require.NoError(t, f.engine.BlockOverdue(ctx))

	late, _ := f.tenants.Get(ctx, "t_late")
	assert.Equal(t, tenant.StatusBlocked, late.Status)
	require.NotNil(t, late.BlockedAt)
	assert.Equal(t, late.BlockedAt.Add(20*24*time.Hour), *late.WillBeDeletedAt)

	current, _ := f.tenants.Get(ctx, "t_current")
	assert.Equal(t, tenant.StatusActive, current.Status)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.KindBlocked, sent[0].Template)
	assert.Equal(t, "payment_overdue", sent[0].Vars["reason"])
}

func TestBlockOverdue_ReblockResetsDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{Grace: 20 * 24 * time.Hour})

	// Previously blocked and since reactivated, now overdue again. The old
	// deadline must be recomputed from the fresh block event.
	old := time.Now().Add(-30 * 24 * time.Hour)
	f.addTenant(&tenant.Tenant{
		ID:              "t_1",
		Slug:            "acme",
		Status:          tenant.StatusActive,
		NextDueDate:     time.Now().Add(-time.Hour),
		BlockedAt:       timePtr(old),
		WillBeDeletedAt: timePtr(old.Add(20 * 24 * time.Hour)),
	})

	require.NoError(t, f.engine.BlockOverdue(ctx))

	got, _ := f.tenants.Get(ctx, "t_1")
	assert.Equal(t, tenant.StatusBlocked, got.Status)
	assert.WithinDuration(t, time.Now(), *got.BlockedAt, time.Minute)
	assert.Equal(t, got.BlockedAt.Add(20*24*time.Hour), *got.WillBeDeletedAt)
}

func TestRunBillingPass_DowngradeRejectionExcludesTenantFromOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{Grace: 20 * 24 * time.Hour, RenewalTerm: 30 * 24 * time.Hour})
	downgradePlans(f)

	// Overdue AND carrying a doomed downgrade: the downgrade step blocks it,
	// and the overdue step must not process it a second time.
	f.addTenant(&tenant.Tenant{
		ID:                    "t_1",
		Slug:                  "acme",
		Status:                tenant.StatusActive,
		PlanID:                "pro",
		PlanChangeScheduledID: strPtr("basic"),
		NextDueDate:           time.Now().Add(-time.Minute),
	})
	f.tenants.SetUsage("t_1", tenant.Usage{ActiveUsers: 100})

	require.NoError(t, f.engine.RunBillingPass(ctx))

	got, _ := f.tenants.Get(ctx, "t_1")
	assert.Equal(t, tenant.StatusBlocked, got.Status)
	assert.Nil(t, got.PlanChangeScheduledID)

	// Exactly one blocked notification, from the downgrade rejection.
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "downgrade_rejected", sent[0].Vars["reason"])
}
