package service

import (
	"context"
	"errors"
	"fmt"
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

// TransferService moves stock of one product between two warehouses. The
// source is always debited before the destination is credited; the two
// writes are independent and a failure between them is reported, not
// retried.
type TransferService struct {
	stock  port.StockRepository
	cache  port.CacheRepository
	recon  port.ReconciliationLog
	logger *zap.Logger
	now    func() time.Time
}

func NewTransferService(stock port.StockRepository, cache port.CacheRepository, recon port.ReconciliationLog, logger *zap.Logger) *TransferService {
	return &TransferService{
		stock:  stock,
		cache:  cache,
		recon:  recon,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TransferService) Transfer(ctx context.Context, req domain.Transfer) (*domain.TransferResult, error) {
	ctx, span := tracer.Start(ctx, "TransferService.Transfer", trace.WithAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.String("warehouse.from", req.FromWarehouse),
		attribute.String("warehouse.to", req.ToWarehouse),
		attribute.Int("transfer.quantity", req.Quantity),
	))
	defer span.End()

	log := observability.LoggerFrom(ctx, s.logger).With(
		zap.String("product_id", req.ProductID),
		zap.String("from_warehouse", req.FromWarehouse),
		zap.String("to_warehouse", req.ToWarehouse),
		zap.Int("quantity", req.Quantity),
	)

	result, err := s.transfer(ctx, req, log)
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	transferCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return result, err
}

func (s *TransferService) transfer(ctx context.Context, req domain.Transfer, log *zap.Logger) (*domain.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var idempotencyKey string
	if req.RequestID != "" {
		idempotencyKey = "transfer:" + req.RequestID
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, domain.Wrap(domain.KindInfrastructure, err, "idempotency check failed")
		}
		if !ok {
			log.Info("duplicate transfer request", zap.String("request_id", req.RequestID))
			return nil, domain.Errorf(domain.KindDuplicateRequest, "transfer request %s was already processed", req.RequestID)
		}
	}

	debited, err := s.move(ctx, req, log)
	if err != nil && !debited && idempotencyKey != "" {
		// nothing was written, so the caller may retry with the same key
		if relErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); relErr != nil {
			log.Warn("failed to release idempotency key", zap.Error(relErr))
		}
	}
	if err != nil {
		return nil, err
	}

	log.Info("transfer completed")
	return &domain.TransferResult{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
	}, nil
}

// move reports whether the source was debited, so the caller can tell a
// clean failure from a partial one.
func (s *TransferService) move(ctx context.Context, req domain.Transfer, log *zap.Logger) (bool, error) {
	source, err := s.stock.Get(ctx, req.ProductID, req.FromWarehouse)
	if err != nil {
		return false, domain.Wrap(domain.KindInfrastructure, err, "read source stock")
	}
	if source == nil {
		return false, domain.Errorf(domain.KindSourceNotFound,
			"product %s not found in warehouse %s", req.ProductID, req.FromWarehouse)
	}
	if source.StockLevel < req.Quantity {
		log.Info("insufficient stock", zap.Int("available", source.StockLevel))
		return false, domain.Errorf(domain.KindInsufficientStock,
			"insufficient stock in warehouse %s: available %d, requested %d",
			req.FromWarehouse, source.StockLevel, req.Quantity)
	}

	dest, err := s.stock.Get(ctx, req.ProductID, req.ToWarehouse)
	if err != nil {
		return false, domain.Wrap(domain.KindInfrastructure, err, "read destination stock")
	}

	if err := s.stock.Adjust(ctx, req.ProductID, req.FromWarehouse, -req.Quantity); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return false, domain.Errorf(domain.KindSourceNotFound,
				"product %s not found in warehouse %s", req.ProductID, req.FromWarehouse)
		}
		return false, domain.Wrap(domain.KindInfrastructure, err, "debit source stock")
	}

	if err := s.credit(ctx, *source, dest, req); err != nil {
		return true, s.partialFailure(ctx, req, err, log)
	}

	stockMovementCounter.Add(ctx, int64(req.Quantity), metric.WithAttributes(attribute.String("reason", "transfer")))
	return true, nil
}

// credit adds the quantity to the destination, materializing it from the
// source's descriptive fields on first arrival. A lost creation race falls
// back to an adjustment of the record the other writer created.
func (s *TransferService) credit(ctx context.Context, source domain.StockRecord, dest *domain.StockRecord, req domain.Transfer) error {
	if dest != nil {
		err := s.stock.Adjust(ctx, req.ProductID, req.ToWarehouse, req.Quantity)
		if !errors.Is(err, port.ErrNotFound) {
			return err
		}
	}

	err := s.stock.Create(ctx, source.CloneTo(req.ToWarehouse, req.Quantity, s.now()))
	if errors.Is(err, port.ErrAlreadyExists) {
		return s.stock.Adjust(ctx, req.ProductID, req.ToWarehouse, req.Quantity)
	}
	return err
}

func (s *TransferService) partialFailure(ctx context.Context, req domain.Transfer, cause error, log *zap.Logger) error {
	entry := domain.ReconciliationEntry{
		ID:            uuid.NewString(),
		ProductID:     req.ProductID,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Quantity:      req.Quantity,
		CompletedStep: fmt.Sprintf("debit %d from %s", req.Quantity, req.FromWarehouse),
		FailedStep:    fmt.Sprintf("credit %d to %s", req.Quantity, req.ToWarehouse),
		Error:         cause.Error(),
		RecordedAt:    s.now().UTC(),
	}

	log.Error("transfer partially applied",
		zap.String("reconciliation_id", entry.ID),
		zap.String("completed_step", entry.CompletedStep),
		zap.String("failed_step", entry.FailedStep),
		zap.Error(cause),
	)
	partialTransferCounter.Add(ctx, 1)

	if err := s.recon.Record(ctx, entry); err != nil {
		log.Error("failed to record reconciliation entry",
			zap.String("reconciliation_id", entry.ID),
			zap.Error(err),
		)
	}

	return domain.Wrap(domain.KindPartialTransfer, cause,
		"debited %d units of %s from %s but failed to credit %s",
		req.Quantity, req.ProductID, req.FromWarehouse, req.ToWarehouse)
}
