package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

type stockID struct {
	product   string
	warehouse string
}

// MemoryStockAdapter is the in-process store used by the memory backend and
// by service tests. Each call is atomic; a sequence of calls is not.
type MemoryStockAdapter struct {
	mu      sync.RWMutex
	records map[stockID]domain.StockRecord
	now     func() time.Time
}

func NewMemoryStockAdapter(records ...domain.StockRecord) *MemoryStockAdapter {
	m := &MemoryStockAdapter{records: make(map[stockID]domain.StockRecord), now: time.Now}
	for _, rec := range records {
		m.records[stockID{rec.ProductID, rec.WarehouseID}] = rec
	}
	return m
}

func (m *MemoryStockAdapter) Get(_ context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[stockID{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStockAdapter) Put(_ context.Context, rec domain.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.LastUpdated = domain.Day(rec.LastUpdated)
	m.records[stockID{rec.ProductID, rec.WarehouseID}] = rec
	return nil
}

func (m *MemoryStockAdapter) Create(_ context.Context, rec domain.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := stockID{rec.ProductID, rec.WarehouseID}
	if _, ok := m.records[id]; ok {
		return port.ErrAlreadyExists
	}
	rec.LastUpdated = domain.Day(rec.LastUpdated)
	m.records[id] = rec
	return nil
}

func (m *MemoryStockAdapter) Adjust(_ context.Context, productID, warehouseID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := stockID{productID, warehouseID}
	rec, ok := m.records[id]
	if !ok {
		return port.ErrNotFound
	}
	rec.StockLevel += delta
	rec.LastUpdated = domain.Day(m.now())
	m.records[id] = rec
	return nil
}

func (m *MemoryStockAdapter) Update(_ context.Context, productID, warehouseID string, update domain.StockUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := stockID{productID, warehouseID}
	rec, ok := m.records[id]
	if !ok {
		return port.ErrNotFound
	}
	if update.Empty() {
		return nil
	}
	rec = update.Apply(rec)
	rec.LastUpdated = domain.Day(m.now())
	m.records[id] = rec
	return nil
}

func (m *MemoryStockAdapter) Delete(_ context.Context, productID, warehouseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := stockID{productID, warehouseID}
	if _, ok := m.records[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryStockAdapter) List(_ context.Context) ([]domain.StockRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]domain.StockRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].WarehouseID < records[j].WarehouseID
	})
	return records, nil
}

func (m *MemoryStockAdapter) ListByWarehouse(ctx context.Context, warehouseID string, limit int, cursor string) ([]domain.StockRecord, string, error) {
	all, _ := m.List(ctx)

	records := []domain.StockRecord{}
	next := ""
	for _, rec := range all {
		if rec.WarehouseID != warehouseID || rec.ProductID <= cursor {
			continue
		}
		if len(records) == limit {
			next = records[limit-1].ProductID
			break
		}
		records = append(records, rec)
	}
	return records, next, nil
}

// MemoryOrderLedger is the in-process order ledger of the memory backend.
type MemoryOrderLedger struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemoryOrderLedger() *MemoryOrderLedger {
	return &MemoryOrderLedger{orders: make(map[string]domain.Order)}
}

func (m *MemoryOrderLedger) Insert(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; ok {
		return port.ErrAlreadyExists
	}
	m.orders[order.ID] = order
	return nil
}

func (m *MemoryOrderLedger) Get(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *MemoryOrderLedger) Update(_ context.Context, orderID string, expected domain.OrderStatus, update domain.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok || order.Status != expected {
		return port.ErrNotFound
	}
	m.orders[orderID] = update.Apply(order)
	return nil
}

func (m *MemoryOrderLedger) List(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := []domain.Order{}
	for _, order := range m.orders {
		if status == "" || order.Status == status {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, nil
}

func (m *MemoryOrderLedger) Delete(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderID]; !ok {
		return port.ErrNotFound
	}
	delete(m.orders, orderID)
	return nil
}

// MemoryCache implements the idempotency keys and the reconciliation log
// without Redis. Keys never expire.
type MemoryCache struct {
	mu      sync.Mutex
	keys    map[string]struct{}
	entries []domain.ReconciliationEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{keys: make(map[string]struct{})}
}

func (m *MemoryCache) SetIdempotency(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *MemoryCache) ReleaseIdempotency(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

func (m *MemoryCache) Record(_ context.Context, entry domain.ReconciliationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryCache) Entries(_ context.Context) ([]domain.ReconciliationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.ReconciliationEntry{}, m.entries...), nil
}
