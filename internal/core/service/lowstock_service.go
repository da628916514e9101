package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// LowStockMonitor reports every record below its reorder threshold in a
// single notification. It only reads, so it is safe to run on any schedule.
type LowStockMonitor struct {
	lister   port.StockLister
	notifier port.Notifier
	logger   *zap.Logger
}

func NewLowStockMonitor(lister port.StockLister, notifier port.Notifier, logger *zap.Logger) *LowStockMonitor {
	return &LowStockMonitor{lister: lister, notifier: notifier, logger: logger}
}

func (m *LowStockMonitor) Run(ctx context.Context) (*domain.LowStockReport, error) {
	ctx, span := tracer.Start(ctx, "LowStockMonitor.Run")
	defer span.End()

	log := observability.LoggerFrom(ctx, m.logger)

	records, err := m.lister.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, domain.Wrap(domain.KindInfrastructure, err, "list stock records")
	}

	report := domain.NewLowStockReport(records)
	if report.Empty() {
		log.Info("no products below reorder threshold", zap.Int("checked", len(records)))
		return &report, nil
	}

	if err := m.notifier.Send(ctx, report.Subject, report.Message); err != nil {
		span.RecordError(err)
		log.Error("failed to send low stock report", zap.Int("items", len(report.Items)), zap.Error(err))
		return &report, domain.Wrap(domain.KindInfrastructure, err, "send low stock report")
	}

	report.Sent = true
	log.Info("low stock report sent", zap.Int("items", len(report.Items)), zap.Int("checked", len(records)))
	return &report, nil
}
