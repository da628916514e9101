package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

var (
	testDay = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	errDown = errors.New("store unavailable")
)

func record(warehouseID string, level, threshold int) domain.StockRecord {
	return domain.StockRecord{
		ProductID:        "P1",
		WarehouseID:      warehouseID,
		ProductName:      "Widget",
		StockLevel:       level,
		ReorderThreshold: threshold,
		Supplier:         "Acme",
		Category:         "Hardware",
		LastUpdated:      testDay,
	}
}

// faultyStock wraps a working store and fails selected calls.
type faultyStock struct {
	port.StockRepository

	mu sync.Mutex
	// failAdjust fails Adjust for the warehouse, failCreate fails Create.
	failAdjust map[string]error
	failCreate error
	failGet    error
	// hideOnce makes the next Get of the warehouse report no record.
	hideOnce map[string]bool
	adjusts  int
}

func newFaultyStock(records ...domain.StockRecord) *faultyStock {
	return &faultyStock{
		StockRepository: storage.NewMemoryStockAdapter(records...),
		failAdjust:      make(map[string]error),
		hideOnce:        make(map[string]bool),
	}
}

func (f *faultyStock) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	f.mu.Lock()
	hide := f.hideOnce[warehouseID]
	delete(f.hideOnce, warehouseID)
	failGet := f.failGet
	f.mu.Unlock()

	if failGet != nil {
		return nil, failGet
	}
	if hide {
		return nil, nil
	}
	return f.StockRepository.Get(ctx, productID, warehouseID)
}

func (f *faultyStock) Adjust(ctx context.Context, productID, warehouseID string, delta int) error {
	f.mu.Lock()
	err := f.failAdjust[warehouseID]
	f.adjusts++
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.StockRepository.Adjust(ctx, productID, warehouseID, delta)
}

func (f *faultyStock) Create(ctx context.Context, rec domain.StockRecord) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	return f.StockRepository.Create(ctx, rec)
}

func (f *faultyStock) level(warehouseID string) int {
	rec, _ := f.StockRepository.Get(context.Background(), "P1", warehouseID)
	if rec == nil {
		return -1
	}
	return rec.StockLevel
}

// racingLedger reports every conditional update as lost.
type racingLedger struct {
	port.OrderLedger
}

func (racingLedger) Update(context.Context, string, domain.OrderStatus, domain.OrderUpdate) error {
	return port.ErrNotFound
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

type MockStockLister struct {
	mock.Mock
}

func (m *MockStockLister) List(ctx context.Context) ([]domain.StockRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.StockRecord)
	return records, args.Error(1)
}
