package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Get(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	store.Put(&Plan{ID: "basic", Name: "Basic", PriceCents: 4900, MaxUsers: 5, Active: true})

	got, err := store.Get(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, "Basic", got.Name)

	// Copies, not aliases.
	got.Name = "mutated"
	fresh, _ := store.Get(ctx, "basic")
	assert.Equal(t, "Basic", fresh.Name)
}

func TestMemoryStore_ListActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Put(&Plan{ID: "pro", PriceCents: 19900, Active: true})
	store.Put(&Plan{ID: "basic", PriceCents: 4900, Active: true})
	store.Put(&Plan{ID: "legacy", PriceCents: 900, Active: false})

	got, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "basic", got[0].ID, "cheapest first")
	assert.Equal(t, "pro", got[1].ID)
}

func TestPlanLimits(t *testing.T) {
	p := &Plan{ID: "pro", MaxUsers: 20, MaxWhatsApps: 5, MaxCampaignsMonth: 50}
	assert.Equal(t, Limits{MaxUsers: 20, MaxWhatsApps: 5, MaxCampaignsMonth: 50}, p.Limits())
}
