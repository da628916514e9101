package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/warehouse-inventory/internal/adapter/handler"
	"github.com/rl1809/warehouse-inventory/internal/adapter/notify"
	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/config"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdownTelemetry, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Printf("telemetry setup incomplete: %v", err)
	}
	logger := observability.NewLogger(cfg)
	defer logger.Sync()

	// Initialize stores
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open stores", zap.String("backend", cfg.StockBackend), zap.Error(err))
	}
	logger.Info("stores ready", zap.String("backend", cfg.StockBackend))

	// Initialize notifier
	var notifier port.Notifier = notify.NewLogNotifier(logger)
	var kafkaNotifier *notify.KafkaNotifier
	if cfg.KafkaBroker != "" {
		producer, err := notify.NewKafkaWriter(cfg.KafkaBroker, cfg.LowStockTopic)
		if err != nil {
			logger.Fatal("failed to create kafka writer", zap.Error(err))
		}
		kafkaNotifier = notify.NewKafkaNotifier(producer)
		notifier = kafkaNotifier
		logger.Info("publishing notifications to kafka",
			zap.String("broker", cfg.KafkaBroker),
			zap.String("topic", cfg.LowStockTopic),
		)
	}

	// Initialize services
	transferService := service.NewTransferService(backend.Stock, backend.Cache, backend.Recon, logger)
	orderService := service.NewOrderService(backend.Stock, backend.Ledger, notifier, logger)
	productService := service.NewProductService(backend.Stock, logger)

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.CorrelationInterceptor()))
	handler.RegisterInventoryServer(grpcServer, handler.NewGRPCHandler(transferService, orderService, logger))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handler.InventoryService, grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(transferService, orderService, productService, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Error("failed to close kafka writer", zap.Error(err))
		}
	}
	if err := backend.Close(); err != nil {
		logger.Error("failed to close stores", zap.Error(err))
	}
	logger.Info("connections closed")

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", zap.Error(err))
	}
}
