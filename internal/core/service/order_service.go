package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// DefaultNotifyTimeout bounds a low-stock alert sent on the request path.
const DefaultNotifyTimeout = 2 * time.Second

// OrderService keeps the order ledger and the stock store in step. Entering
// Completed is the only transition that touches stock: a supply order created
// as Completed restocks, a pending order completed later is fulfilled from
// stock.
type OrderService struct {
	stock    port.StockRepository
	ledger   port.OrderLedger
	notifier port.Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	notifyTimeout time.Duration
}

func NewOrderService(stock port.StockRepository, ledger port.OrderLedger, notifier port.Notifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		stock:    stock,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,

		notifyTimeout: DefaultNotifyTimeout,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, req domain.OrderCreate) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.String("warehouse.id", req.WarehouseID),
		attribute.String("order.status", string(req.Status)),
	))
	defer span.End()

	order, err := s.createOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
	}
	return order, err
}

func (s *OrderService) createOrder(ctx context.Context, req domain.OrderCreate) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.OrderStatusPending
	}

	log := observability.LoggerFrom(ctx, s.logger)

	rec, err := s.stock.Get(ctx, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "read stock record")
	}
	if rec == nil {
		return nil, productNotFound(req.ProductID, req.WarehouseID)
	}

	order := domain.Order{
		ID:          s.newID(),
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Status:      req.Status,
		CreatedAt:   s.now().UTC(),
	}
	log = log.With(zap.String("order_id", order.ID), zap.String("product_id", order.ProductID),
		zap.String("warehouse_id", order.WarehouseID))

	restocked := false
	if order.Status == domain.OrderStatusCompleted {
		if err := s.stock.Adjust(ctx, order.ProductID, order.WarehouseID, order.Quantity); err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return nil, productNotFound(order.ProductID, order.WarehouseID)
			}
			return nil, domain.Wrap(domain.KindInfrastructure, err, "restock")
		}
		restocked = true
		stockMovementCounter.Add(ctx, int64(order.Quantity), metric.WithAttributes(attribute.String("reason", "supply")))
		log.Info("supply order restocked", zap.Int("quantity", order.Quantity))
	}

	if err := s.ledger.Insert(ctx, order); err != nil {
		if restocked {
			log.Error("stock restocked but order was not recorded", zap.Int("quantity", order.Quantity), zap.Error(err))
		}
		return nil, domain.Wrap(domain.KindInfrastructure, err, "insert order")
	}

	log.Info("order created", zap.String("status", string(order.Status)))
	return &order, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, update domain.OrderUpdate) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	order, err := s.updateOrder(ctx, orderID, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
	}
	return order, err
}

func (s *OrderService) updateOrder(ctx context.Context, orderID string, update domain.OrderUpdate) (*domain.Order, error) {
	// an empty warehouse is the same as no warehouse
	if update.WarehouseID != nil && *update.WarehouseID == "" {
		update.WarehouseID = nil
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	log := observability.LoggerFrom(ctx, s.logger).With(zap.String("order_id", orderID))

	current, err := s.ledger.Get(ctx, orderID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "read order")
	}
	if current == nil {
		return nil, domain.Errorf(domain.KindOrderNotFound, "order %s not found", orderID)
	}

	if current.Status.Terminal() {
		if update.Replays(*current) {
			log.Debug("replayed update on terminal order", zap.String("status", string(current.Status)))
			return current, nil
		}
		return nil, domain.Errorf(domain.KindInvalidTransition,
			"order %s is %s and cannot be changed", orderID, current.Status)
	}

	updated := update.Apply(*current)

	fulfilled := false
	if updated.Status == domain.OrderStatusCompleted {
		if update.WarehouseID == nil {
			return nil, domain.Errorf(domain.KindWarehouseRequired,
				"warehouse_id is required to complete order %s", orderID)
		}
		if err := s.fulfill(ctx, updated, log); err != nil {
			return nil, err
		}
		fulfilled = true
	}

	if err := s.ledger.Update(ctx, orderID, current.Status, update); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			if fulfilled {
				log.Error("order changed concurrently after stock was fulfilled",
					zap.String("product_id", updated.ProductID),
					zap.String("warehouse_id", updated.WarehouseID),
					zap.Int("quantity", updated.Quantity),
				)
			}
			return nil, domain.Errorf(domain.KindInvalidTransition,
				"order %s is no longer %s", orderID, current.Status)
		}
		if fulfilled {
			log.Error("stock fulfilled but order was not updated", zap.Error(err))
		}
		return nil, domain.Wrap(domain.KindInfrastructure, err, "update order")
	}

	log.Info("order updated",
		zap.String("from_status", string(current.Status)),
		zap.String("to_status", string(updated.Status)),
	)
	return &updated, nil
}

// fulfill takes the order quantity out of stock. Stock never goes below zero:
// a shortfall clamps to zero and is logged.
func (s *OrderService) fulfill(ctx context.Context, order domain.Order, log *zap.Logger) error {
	rec, err := s.stock.Get(ctx, order.ProductID, order.WarehouseID)
	if err != nil {
		return domain.Wrap(domain.KindInfrastructure, err, "read stock record")
	}
	if rec == nil {
		return productNotFound(order.ProductID, order.WarehouseID)
	}

	level := max(0, rec.StockLevel-order.Quantity)
	if shortfall := order.Quantity - rec.StockLevel; shortfall > 0 {
		log.Warn("fulfillment exceeds available stock, clamping to zero",
			zap.String("product_id", order.ProductID),
			zap.String("warehouse_id", order.WarehouseID),
			zap.Int("available", rec.StockLevel),
			zap.Int("shortfall", shortfall),
		)
	}

	// stock already at zero: nothing to write
	if delta := level - rec.StockLevel; delta != 0 {
		if err := s.stock.Adjust(ctx, order.ProductID, order.WarehouseID, delta); err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return productNotFound(order.ProductID, order.WarehouseID)
			}
			return domain.Wrap(domain.KindInfrastructure, err, "fulfill from stock")
		}
		stockMovementCounter.Add(ctx, int64(-delta), metric.WithAttributes(attribute.String("reason", "fulfillment")))
	}

	rec.StockLevel = level
	if rec.StockLevel <= rec.ReorderThreshold {
		s.signalLowStock(ctx, *rec, log)
	}
	return nil
}

// signalLowStock never fails the caller; notification errors are logged and
// the send is cut off after notifyTimeout.
func (s *OrderService) signalLowStock(ctx context.Context, rec domain.StockRecord, log *zap.Logger) {
	log.Warn("low stock",
		zap.String("product_id", rec.ProductID),
		zap.String("warehouse_id", rec.WarehouseID),
		zap.Int("stock_level", rec.StockLevel),
		zap.Int("reorder_threshold", rec.ReorderThreshold),
	)
	lowStockCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("warehouse.id", rec.WarehouseID)))

	if s.notifier == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Send(sendCtx, domain.LowStockAlertSubject, rec.Summary()); err != nil {
		log.Error("failed to send low stock alert", zap.Error(err))
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.ledger.Get(ctx, orderID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "read order")
	}
	if order == nil {
		return nil, domain.Errorf(domain.KindOrderNotFound, "order %s not found", orderID)
	}
	return order, nil
}

// ListOrders returns every order, or only those in status when it is set.
func (s *OrderService) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Errorf(domain.KindInvalidRequest, "status must be one of Pending, Completed, Cancelled")
	}
	orders, err := s.ledger.List(ctx, status)
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "list orders")
	}
	return orders, nil
}

// DeleteOrder removes the ledger entry only; stock is left as it is.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.ledger.Delete(ctx, orderID)
	if errors.Is(err, port.ErrNotFound) {
		return domain.Errorf(domain.KindOrderNotFound, "order %s not found", orderID)
	}
	if err != nil {
		return domain.Wrap(domain.KindInfrastructure, err, "delete order")
	}
	observability.LoggerFrom(ctx, s.logger).Info("order deleted", zap.String("order_id", orderID))
	return nil
}

func productNotFound(productID, warehouseID string) error {
	return domain.Errorf(domain.KindProductNotFound,
		"product %s not found in warehouse %s", productID, warehouseID)
}
