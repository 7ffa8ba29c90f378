package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/billing"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

func TestSweepDeletions_PurgesElapsedTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(blockedTenant("t_1", -time.Hour))
	f.tenants.AddInstance("t_1", tenant.Instance{ID: "wa_1", Token: "tok-1"})
	f.tenants.AddInstance("t_1", tenant.Instance{ID: "wa_2", Token: "tok-2"})

	require.NoError(t, f.engine.SweepDeletions(ctx))

	_, err := f.tenants.Get(ctx, "t_1")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, f.provider.deleted)
}

func TestSweepDeletions_SettledPaymentPreventsPurge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(blockedTenant("t_1", -time.Hour))
	require.NoError(t, f.payments.Create(ctx, &billing.Payment{
		ID:       "pay_1",
		TenantID: "t_1",
		Status:   billing.StatusConfirmed,
	}))

	require.NoError(t, f.engine.SweepDeletions(ctx))

	// The tenant survives untouched: no purge, no provider teardown.
	got, err := f.tenants.Get(ctx, "t_1")
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusBlocked, got.Status)
	assert.Empty(t, f.provider.deleted)
}

func TestSweepDeletions_PendingPaymentDoesNotPreventPurge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(blockedTenant("t_1", -time.Hour))
	require.NoError(t, f.payments.Create(ctx, &billing.Payment{
		ID:       "pay_1",
		TenantID: "t_1",
		Status:   billing.StatusPending,
	}))

	require.NoError(t, f.engine.SweepDeletions(ctx))

	_, err := f.tenants.Get(ctx, "t_1")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestSweepDeletions_SkipsTenantsInsideGrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})

	f.addTenant(blockedTenant("t_1", 48*time.Hour))

	require.NoError(t, f.engine.SweepDeletions(ctx))

	_, err := f.tenants.Get(ctx, "t_1")
	assert.NoError(t, err)
}

func TestSweepDeletions_ProviderFailureDoesNotBlockPurge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})
	f.provider.fail = true

	f.addTenant(blockedTenant("t_1", -time.Hour))
	f.tenants.AddInstance("t_1", tenant.Instance{ID: "wa_1", Token: "tok-1"})

	require.NoError(t, f.engine.SweepDeletions(ctx))

	_, err := f.tenants.Get(ctx, "t_1")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestSweepDeletions_SettledCheckFailureSkipsTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{})
	f.engine.payments = failingPayments{}

	f.addTenant(blockedTenant("t_1", -time.Hour))

	// An unverifiable safety gate means the tenant stays; erring toward
	// keeping data is the whole point of the double check.
	require.NoError(t, f.engine.SweepDeletions(ctx))
	_, err := f.tenants.Get(ctx, "t_1")
	assert.NoError(t, err)
}

type failingPayments struct{}

func (failingPayments) Create(context.Context, *billing.Payment) error { return nil }
func (failingPayments) Get(context.Context, string) (*billing.Payment, error) {
	return nil, billing.ErrPaymentNotFound
}
func (failingPayments) HasSettled(context.Context, string) (bool, error) {
	return false, errors.New("db connection reset")
}
func (failingPayments) HasPendingFor(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
func (failingPayments) ListByTenant(context.Context, string) ([]*billing.Payment, error) {
	return nil, nil
}
