package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_HasSettled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_1", TenantID: "t_1", Status: StatusPending}))
	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_2", TenantID: "t_1", Status: StatusCancelled}))

	settled, err := store.HasSettled(ctx, "t_1")
	require.NoError(t, err)
	assert.False(t, settled, "pending and cancelled payments are not settled")

	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_3", TenantID: "t_1", Status: StatusConfirmed}))
	settled, err = store.HasSettled(ctx, "t_1")
	require.NoError(t, err)
	assert.True(t, settled)

	settled, err = store.HasSettled(ctx, "t_other")
	require.NoError(t, err)
	assert.False(t, settled)
}

func TestMemoryStore_HasPendingFor(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &Payment{
		ID: "pay_1", TenantID: "t_1", Status: StatusPending, DueDate: due,
	}))

	pending, err := store.HasPendingFor(ctx, "t_1", due)
	require.NoError(t, err)
	assert.True(t, pending)

	// A different due date is a different billing cycle.
	pending, err = store.HasPendingFor(ctx, "t_1", due.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, pending)

	// A settled payment for the same cycle no longer counts as pending.
	store2 := NewMemoryStore()
	require.NoError(t, store2.Create(ctx, &Payment{
		ID: "pay_2", TenantID: "t_1", Status: StatusReceived, DueDate: due,
	}))
	pending, err = store2.HasPendingFor(ctx, "t_1", due)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestMemoryStore_GetAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "pay_missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	now := time.Now()
	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_2", TenantID: "t_1", CreatedAt: now}))
	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_1", TenantID: "t_1", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Create(ctx, &Payment{ID: "pay_3", TenantID: "t_2", CreatedAt: now}))

	got, err := store.Get(ctx, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "t_1", got.TenantID)

	list, err := store.ListByTenant(ctx, "t_1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pay_1", list[0].ID, "oldest first")
	assert.Equal(t, "pay_2", list[1].ID)
}

func TestPaymentStatusSettled(t *testing.T) {
	assert.True(t, StatusConfirmed.Settled())
	assert.True(t, StatusReceived.Settled())
	assert.False(t, StatusPending.Settled())
	assert.False(t, StatusCancelled.Settled())
}
