package port

import (
	"context"
	"errors"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// StockLister lists every stock record. The store implements it, and so does
// the HTTP client used when the low-stock monitor runs out of process.
type StockLister interface {
	List(ctx context.Context) ([]domain.StockRecord, error)
}

// StockRepository is keyed by (productID, warehouseID). Calls against
// different keys are independent; there is no multi-key transaction.
type StockRepository interface {
	StockLister

	// Get returns nil when the record does not exist
	Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error)

	// Put overwrites the whole record
	Put(ctx context.Context, record domain.StockRecord) error

	// Create inserts the record only if absent, returns ErrAlreadyExists otherwise
	Create(ctx context.Context, record domain.StockRecord) error

	// Adjust adds delta to stock_level and stamps last_updated. It does not
	// guard against the level going negative; callers check first.
	Adjust(ctx context.Context, productID, warehouseID string, delta int) error

	// Update applies a partial update, returns ErrNotFound when absent
	Update(ctx context.Context, productID, warehouseID string, update domain.StockUpdate) error

	// Delete removes the record, returns ErrNotFound when absent
	Delete(ctx context.Context, productID, warehouseID string) error

	// ListByWarehouse pages through one warehouse ordered by product ID.
	// An empty next cursor means there are no more pages.
	ListByWarehouse(ctx context.Context, warehouseID string, limit int, cursor string) ([]domain.StockRecord, string, error)
}
