package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// The memory store backs the memory backend, so it must honour the same
// contract as the Redis and MySQL stores.
var (
	_ port.StockRepository   = (*MemoryStockAdapter)(nil)
	_ port.StockRepository   = (*RedisStockAdapter)(nil)
	_ port.StockRepository   = (*MySQLStockAdapter)(nil)
	_ port.OrderLedger       = (*MemoryOrderLedger)(nil)
	_ port.OrderLedger       = (*PostgresOrderLedger)(nil)
	_ port.CacheRepository   = (*MemoryCache)(nil)
	_ port.CacheRepository   = (*RedisAdapter)(nil)
	_ port.ReconciliationLog = (*MemoryCache)(nil)
	_ port.ReconciliationLog = (*RedisAdapter)(nil)
)

func TestMemoryStock_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStockAdapter(widget("A", 10))
	store.now = func() time.Time { return fixedDay.Add(36 * time.Hour) }

	require.NoError(t, store.Adjust(ctx, "P1", "A", -3))
	assert.ErrorIs(t, store.Adjust(ctx, "P1", "B", 3), port.ErrNotFound)

	require.NoError(t, store.Create(ctx, widget("B", 3)))
	assert.ErrorIs(t, store.Create(ctx, widget("B", 3)), port.ErrAlreadyExists)

	got, err := store.Get(ctx, "P1", "A")
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockLevel)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), got.LastUpdated)

	category := "Tools"
	require.NoError(t, store.Update(ctx, "P1", "B", domain.StockUpdate{Category: &category}))
	assert.ErrorIs(t, store.Update(ctx, "P1", "C", domain.StockUpdate{Category: &category}), port.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "P1", "A"))
	assert.ErrorIs(t, store.Delete(ctx, "P1", "A"), port.ErrNotFound)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Tools", all[0].Category)
}

func TestMemoryStock_ListByWarehouse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStockAdapter()
	for _, id := range []string{"P2", "P3", "P1"} {
		rec := widget("A", 1)
		rec.ProductID = id
		require.NoError(t, store.Put(ctx, rec))
	}

	page, next, err := store.ListByWarehouse(ctx, "A", 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "P2", next)

	page, next, err = store.ListByWarehouse(ctx, "A", 2, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "P3", page[0].ProductID)
	assert.Empty(t, next)
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryOrderLedger()

	first := pendingOrder()
	second := pendingOrder()
	second.ID = "o-2"
	second.Status = domain.OrderStatusCancelled
	second.CreatedAt = orderCreatedAt.Add(time.Minute)

	require.NoError(t, ledger.Insert(ctx, first))
	require.NoError(t, ledger.Insert(ctx, second))
	assert.ErrorIs(t, ledger.Insert(ctx, first), port.ErrAlreadyExists)

	completed := domain.OrderStatusCompleted
	update := domain.OrderUpdate{Status: &completed}
	assert.ErrorIs(t, ledger.Update(ctx, "o-1", domain.OrderStatusCompleted, update), port.ErrNotFound)
	require.NoError(t, ledger.Update(ctx, "o-1", domain.OrderStatusPending, update))

	pending, err := ledger.List(ctx, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := ledger.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o-1", all[0].ID)
	assert.Equal(t, domain.OrderStatusCompleted, all[0].Status)

	require.NoError(t, ledger.Delete(ctx, "o-2"))
	got, err := ledger.Get(ctx, "o-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	ok, _ := cache.SetIdempotency(ctx, "k")
	assert.True(t, ok)
	ok, _ = cache.SetIdempotency(ctx, "k")
	assert.False(t, ok)
	require.NoError(t, cache.ReleaseIdempotency(ctx, "k"))
	ok, _ = cache.SetIdempotency(ctx, "k")
	assert.True(t, ok)

	require.NoError(t, cache.Record(ctx, domain.ReconciliationEntry{ID: "r-1"}))
	entries, err := cache.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
