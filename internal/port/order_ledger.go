package port

import (
	"context"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type OrderLedger interface {
	Insert(ctx context.Context, order domain.Order) error

	// Get returns nil when the order does not exist
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// Update applies the update only while the order still has the expected
	// status, returns ErrNotFound when no row matched
	Update(ctx context.Context, orderID string, expected domain.OrderStatus, update domain.OrderUpdate) error

	// List returns all orders, or only those in status when it is non-empty
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)

	Delete(ctx context.Context, orderID string) error
}
