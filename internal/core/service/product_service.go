package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// ProductService maintains the catalog side of stock records: descriptive
// fields and administrative stock corrections.
type ProductService struct {
	stock  port.StockRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewProductService(stock port.StockRepository, logger *zap.Logger) *ProductService {
	return &ProductService{stock: stock, logger: logger, now: time.Now}
}

// Add stores rec, replacing any record with the same key. A zero
// LastUpdated defaults to today.
func (s *ProductService) Add(ctx context.Context, rec domain.StockRecord) (*domain.StockRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = s.now()
	}
	rec.LastUpdated = domain.Day(rec.LastUpdated)

	if err := s.stock.Put(ctx, rec); err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "store product")
	}

	observability.LoggerFrom(ctx, s.logger).Info("product stored",
		zap.String("product_id", rec.ProductID),
		zap.String("warehouse_id", rec.WarehouseID),
		zap.Int("stock_level", rec.StockLevel),
	)
	return &rec, nil
}

func (s *ProductService) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	if err := requireKey(productID, warehouseID); err != nil {
		return nil, err
	}
	rec, err := s.stock.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "read product")
	}
	if rec == nil {
		return nil, productNotFound(productID, warehouseID)
	}
	return rec, nil
}

func (s *ProductService) Update(ctx context.Context, productID, warehouseID string, update domain.StockUpdate) (*domain.StockRecord, error) {
	if err := requireKey(productID, warehouseID); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	err := s.stock.Update(ctx, productID, warehouseID, update)
	if errors.Is(err, port.ErrNotFound) {
		return nil, productNotFound(productID, warehouseID)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "update product")
	}

	observability.LoggerFrom(ctx, s.logger).Info("product updated",
		zap.String("product_id", productID),
		zap.String("warehouse_id", warehouseID),
		zap.Strings("fields", update.Fields()),
	)
	return s.Get(ctx, productID, warehouseID)
}

func (s *ProductService) Delete(ctx context.Context, productID, warehouseID string) error {
	if err := requireKey(productID, warehouseID); err != nil {
		return err
	}
	err := s.stock.Delete(ctx, productID, warehouseID)
	if errors.Is(err, port.ErrNotFound) {
		return productNotFound(productID, warehouseID)
	}
	if err != nil {
		return domain.Wrap(domain.KindInfrastructure, err, "delete product")
	}

	observability.LoggerFrom(ctx, s.logger).Info("product deleted",
		zap.String("product_id", productID),
		zap.String("warehouse_id", warehouseID),
	)
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.StockRecord, error) {
	records, err := s.stock.List(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "list products")
	}
	return records, nil
}

// ListByWarehouse pages through one warehouse in product order. A zero limit
// means DefaultPageSize; offset is the NextOffset of the previous page.
func (s *ProductService) ListByWarehouse(ctx context.Context, warehouseID string, limit int, offset string) (*domain.StockPage, error) {
	if warehouseID == "" {
		return nil, domain.Errorf(domain.KindInvalidRequest, "warehouse_id is required")
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, domain.Errorf(domain.KindInvalidRequest, "limit must be between 1 and %d", MaxPageSize)
	}

	records, next, err := s.stock.ListByWarehouse(ctx, warehouseID, limit, offset)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "list warehouse products")
	}
	return &domain.StockPage{Items: records, NextOffset: next}, nil
}

func requireKey(productID, warehouseID string) error {
	if productID == "" || warehouseID == "" {
		return domain.Errorf(domain.KindInvalidRequest, "product_id and warehouse_id are required")
	}
	return nil
}
