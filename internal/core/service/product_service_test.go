package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

func newProductService(records ...domain.StockRecord) (*ProductService, *faultyStock) {
	stock := newFaultyStock(records...)
	svc := NewProductService(stock, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 7, 9, 18, 30, 0, 0, time.UTC) }
	return svc, stock
}

func TestProduct_AddDefaultsLastUpdated(t *testing.T) {
	svc, _ := newProductService()

	rec := record("A", 10, 5)
	rec.LastUpdated = time.Time{}

	stored, err := svc.Add(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), stored.LastUpdated)

	got, err := svc.Get(context.Background(), "P1", "A")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestProduct_AddOverwrites(t *testing.T) {
	svc, stock := newProductService(record("A", 10, 5))

	_, err := svc.Add(context.Background(), record("A", 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 3, stock.level("A"))
}

func TestProduct_AddValidation(t *testing.T) {
	svc, _ := newProductService()

	for _, mutate := range []func(*domain.StockRecord){
		func(r *domain.StockRecord) { r.ProductID = "" },
		func(r *domain.StockRecord) { r.WarehouseID = "" },
		func(r *domain.StockRecord) { r.ProductName = "" },
		func(r *domain.StockRecord) { r.Supplier = "" },
		func(r *domain.StockRecord) { r.Category = "" },
		func(r *domain.StockRecord) { r.StockLevel = -1 },
		func(r *domain.StockRecord) { r.ReorderThreshold = -1 },
	} {
		rec := record("A", 10, 5)
		mutate(&rec)
		_, err := svc.Add(context.Background(), rec)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
}

func TestProduct_GetNotFound(t *testing.T) {
	svc, _ := newProductService()

	_, err := svc.Get(context.Background(), "P1", "A")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Get(context.Background(), "P1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestProduct_Update(t *testing.T) {
	svc, _ := newProductService(record("A", 10, 5))

	updated, err := svc.Update(context.Background(), "P1", "A", domain.StockUpdate{
		StockLevel: intPtr(42),
		Supplier:   strPtr("Globex"),
	})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.StockLevel)
	assert.Equal(t, "Globex", updated.Supplier)
	assert.Equal(t, "Widget", updated.ProductName)

	_, err = svc.Update(context.Background(), "P1", "Z", domain.StockUpdate{Supplier: strPtr("Globex")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Update(context.Background(), "P1", "A", domain.StockUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.Update(context.Background(), "P1", "A", domain.StockUpdate{ReorderThreshold: intPtr(-3)})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestProduct_Delete(t *testing.T) {
	svc, _ := newProductService(record("A", 10, 5))

	require.NoError(t, svc.Delete(context.Background(), "P1", "A"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "P1", "A"), domain.ErrProductNotFound)
}

func TestProduct_ListByWarehouse(t *testing.T) {
	var records []domain.StockRecord
	for i := 0; i < 5; i++ {
		rec := record("A", i, 5)
		rec.ProductID = fmt.Sprintf("P%d", i)
		records = append(records, rec)
	}
	records = append(records, record("B", 1, 1))
	svc, _ := newProductService(records...)

	page, err := svc.ListByWarehouse(context.Background(), "A", 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "P1", page.NextOffset)

	var seen []string
	offset := ""
	for {
		page, err := svc.ListByWarehouse(context.Background(), "A", 2, offset)
		require.NoError(t, err)
		for _, rec := range page.Items {
			seen = append(seen, rec.ProductID)
		}
		if page.NextOffset == "" {
			break
		}
		offset = page.NextOffset
	}
	assert.Equal(t, []string{"P0", "P1", "P2", "P3", "P4"}, seen)

	page, err = svc.ListByWarehouse(context.Background(), "A", 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Empty(t, page.NextOffset)
}

func TestProduct_ListByWarehouseLimits(t *testing.T) {
	svc, _ := newProductService()

	for _, limit := range []int{-1, MaxPageSize + 1} {
		_, err := svc.ListByWarehouse(context.Background(), "A", limit, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}

	_, err := svc.ListByWarehouse(context.Background(), "", 10, "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	page, err := svc.ListByWarehouse(context.Background(), "A", MaxPageSize, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestProduct_ListInfrastructureError(t *testing.T) {
	svc, stock := newProductService(record("A", 1, 1))
	stock.failGet = errDown

	_, err := svc.Get(context.Background(), "P1", "A")
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}
