package lifecycle

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/billing"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/plan"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

func TestNotifyUpcomingDue_SendsAtDiscreteThresholds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	for days := 1; days <= 3; days++ {
		id := "t_" + strconv.Itoa(days)
		f.addTenant(&tenant.Tenant{
			ID:          id,
			Slug:        id,
			Status:      tenant.StatusActive,
			NextDueDate: time.Now().Add(time.Duration(days)*24*time.Hour - time.Hour),
		})
	}
	// Due further out than the window: no warning.
	f.addTenant(&tenant.Tenant{
		ID:          "t_far",
		Slug:        "far",
		Status:      tenant.StatusActive,
		NextDueDate: time.Now().Add(10 * 24 * time.Hour),
	})

	require.NoError(t, f.engine.NotifyUpcomingDue(ctx))

	sent := f.mailer.Sent()
	require.Len(t, sent, 3)
	days := map[string]bool{}
	for _, m := range sent {
		assert.Equal(t, notify.KindExpirationWarning, m.Template)
		days[m.Vars["daysUntilDue"]] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true, "3": true}, days)
}

func TestNotifyUpcomingDue_DedupWithinWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(&tenant.Tenant{
		ID:          "t_1",
		Slug:        "acme",
		Status:      tenant.StatusActive,
		NextDueDate: time.Now().Add(2*24*time.Hour - time.Hour),
	})

	// Two passes within the same hour: exactly one record, one mail.
	require.NoError(t, f.engine.NotifyUpcomingDue(ctx))
	require.NoError(t, f.engine.NotifyUpcomingDue(ctx))

	assert.Len(t, f.mailer.Sent(), 1)
	records := f.ledger.All()
	require.Len(t, records, 1)
	assert.Equal(t, notify.KindExpirationWarning, records[0].Kind)
	assert.Equal(t, 2, records[0].DaysBefore)
}

func TestNotifyUpcomingDue_SkipsOverdueAndBlocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(&tenant.Tenant{
		ID:          "t_overdue",
		Slug:        "overdue",
		Status:      tenant.StatusActive,
		NextDueDate: time.Now().Add(-time.Hour),
	})
	f.addTenant(&tenant.Tenant{
		ID:          "t_blocked",
		Slug:        "blocked",
		Status:      tenant.StatusBlocked,
		NextDueDate: time.Now().Add(24 * time.Hour),
	})

	require.NoError(t, f.engine.NotifyUpcomingDue(ctx))
	assert.Empty(t, f.mailer.Sent())
}

func TestCreateRenewalCharges_DisabledByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.plans.Put(&plan.Plan{ID: "pro", PriceCents: 19900, Active: true})
	f.addTenant(&tenant.Tenant{
		ID:          "t_1",
		Slug:        "acme",
		Status:      tenant.StatusActive,
		PlanID:      "pro",
		NextDueDate: time.Now().Add(24 * time.Hour),
	})

	require.NoError(t, f.engine.CreateRenewalCharges(ctx))
	assert.Empty(t, f.gateway.charges)
}

func TestCreateRenewalCharges_CreatesOncePerDueDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{RenewalCharges: true})

	f.plans.Put(&plan.Plan{ID: "pro", PriceCents: 19900, Active: true})
	due := time.Now().Add(24 * time.Hour)
	f.addTenant(&tenant.Tenant{
		ID:              "t_1",
		Slug:            "acme",
		Status:          tenant.StatusActive,
		PlanID:          "pro",
		NextDueDate:     due,
		AsaasCustomerID: "cus_123",
	})

	require.NoError(t, f.engine.CreateRenewalCharges(ctx))
	require.NoError(t, f.engine.CreateRenewalCharges(ctx))

	// One gateway charge, one local pending payment.
	assert.Len(t, f.gateway.charges, 1)
	payments, err := f.payments.ListByTenant(ctx, "t_1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, billing.StatusPending, payments[0].Status)
	assert.Equal(t, int64(19900), payments[0].AmountCents)
	assert.True(t, payments[0].DueDate.Equal(due))
}

func TestCreateRenewalCharges_GatewayFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{RenewalCharges: true})
	f.gateway.fail = true

	f.plans.Put(&plan.Plan{ID: "pro", PriceCents: 19900, Active: true})
	f.addTenant(&tenant.Tenant{
		ID:          "t_1",
		Slug:        "acme",
		Status:      tenant.StatusActive,
		PlanID:      "pro",
		NextDueDate: time.Now().Add(24 * time.Hour),
	})

	// Gateway failure is per-tenant recoverable, not pass-fatal.
	require.NoError(t, f.engine.CreateRenewalCharges(ctx))
	payments, _ := f.payments.ListByTenant(ctx, "t_1")
	assert.Empty(t, payments)
}
