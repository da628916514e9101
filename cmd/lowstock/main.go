package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/adapter/client"
	"github.com/rl1809/warehouse-inventory/internal/adapter/notify"
	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/config"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// lowstock runs the low-stock monitor once and exits non-zero when the
// report could not be built or sent. Schedule it with cron.
func main() {
	ctx := observability.WithCorrelationID(context.Background(), uuid.NewString())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTelemetry, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Printf("telemetry setup incomplete: %v", err)
	}
	logger := observability.NewLogger(cfg)

	runErr := run(ctx, cfg, logger)
	if runErr != nil {
		observability.LoggerFrom(ctx, logger).Error("low stock run failed", zap.Error(runErr))
	}

	if err := shutdownTelemetry(ctx); err != nil {
		logger.Error("telemetry shutdown failed", zap.Error(err))
	}
	_ = logger.Sync()

	if runErr != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var lister port.StockLister
	if cfg.APIBaseURL != "" {
		lister = client.NewInventoryClient(cfg.APIBaseURL, cfg.RequestTimeout)
		logger.Info("reading stock through the API", zap.String("base_url", cfg.APIBaseURL))
	} else {
		backend, err := storage.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open stores: %w", err)
		}
		defer backend.Close()
		lister = backend.Stock
	}

	var notifier port.Notifier = notify.NewLogNotifier(logger)
	if cfg.KafkaBroker != "" {
		producer, err := notify.NewKafkaWriter(cfg.KafkaBroker, cfg.LowStockTopic)
		if err != nil {
			return err
		}
		kafkaNotifier := notify.NewKafkaNotifier(producer)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	report, err := service.NewLowStockMonitor(lister, notifier, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Low stock items: %d (sent: %t)\n", len(report.Items), report.Sent)
	return nil
}
