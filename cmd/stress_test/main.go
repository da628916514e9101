package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const (
	redisAddr      = "localhost:6379"
	productID      = "stress-item"
	fromWarehouse  = "WH-A"
	toWarehouse    = "WH-B"
	initialStock   = 20
	totalTransfers = 50
	idempotencyTTL = time.Minute
)

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Initialize adapters and service
	stock := storage.NewRedisStockAdapter(rdb)
	cache := storage.NewRedisAdapter(rdb, idempotencyTTL)

	// Clear previous test data
	for _, w := range []string{fromWarehouse, toWarehouse} {
		if err := stock.Delete(ctx, productID, w); err != nil && !errors.Is(err, port.ErrNotFound) {
			log.Fatalf("failed to clear %s: %v", w, err)
		}
	}

	if err := stock.Put(ctx, domain.StockRecord{
		ProductID:        productID,
		WarehouseID:      fromWarehouse,
		ProductName:      "Stress Item",
		StockLevel:       initialStock,
		ReorderThreshold: 5,
		Supplier:         "Stress Supplier",
		Category:         "Test",
		LastUpdated:      domain.Day(time.Now()),
	}); err != nil {
		log.Fatalf("failed to set stock: %v", err)
	}

	transferService := service.NewTransferService(stock, cache, cache, zap.NewNop())

	// Counters
	var successCount atomic.Int32
	var insufficientCount atomic.Int32
	var otherCount atomic.Int32

	// Spawn concurrent transfers of one unit each
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalTransfers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := transferService.Transfer(ctx, domain.Transfer{
				ProductID:     productID,
				FromWarehouse: fromWarehouse,
				ToWarehouse:   toWarehouse,
				Quantity:      1,
				RequestID:     fmt.Sprintf("stress-%d-%d", start.UnixNano(), n),
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficientCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	insufficient := insufficientCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Transfers:  %d\n", totalTransfers)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Insufficient:     %d\n", insufficient)
	fmt.Printf("Other Failures:   %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Verify conservation across both warehouses
	source, err := stock.Get(ctx, productID, fromWarehouse)
	if err != nil {
		log.Fatalf("failed to read %s: %v", fromWarehouse, err)
	}
	dest, err := stock.Get(ctx, productID, toWarehouse)
	if err != nil {
		log.Fatalf("failed to read %s: %v", toWarehouse, err)
	}
	sourceLevel, destLevel := level(source), level(dest)
	fmt.Printf("Final Stock:      %s=%d %s=%d\n", fromWarehouse, sourceLevel, toWarehouse, destLevel)

	if sourceLevel+destLevel == initialStock {
		fmt.Printf("PASS: Total stock conserved at %d\n", initialStock)
	} else {
		fmt.Printf("FAIL: Expected total %d, got %d\n", initialStock, sourceLevel+destLevel)
	}

	if destLevel == int(success) {
		fmt.Println("PASS: Every successful transfer was credited")
	} else {
		fmt.Printf("FAIL: Expected destination %d, got %d\n", success, destLevel)
	}
	if sourceLevel < 0 {
		fmt.Printf("NOTE: Source went negative (%d); transfers check stock before debiting without compare-and-swap\n", sourceLevel)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		log.Fatalf("failed to read reconciliation log: %v", err)
	}
	fmt.Printf("Reconciliation Entries: %d\n", len(entries))
}

func level(rec *domain.StockRecord) int {
	if rec == nil {
		return 0
	}
	return rec.StockLevel
}
