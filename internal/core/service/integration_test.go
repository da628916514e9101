package service

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type testEnv struct {
	redis *redis.Client
	stock *storage.RedisStockAdapter
	cache *storage.RedisAdapter
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &testEnv{
		redis: rdb,
		stock: storage.NewRedisStockAdapter(rdb),
		cache: storage.NewRedisAdapter(rdb, time.Hour),
	}
}

func (e *testEnv) total(t *testing.T, warehouses ...string) int {
	t.Helper()
	sum := 0
	for _, w := range warehouses {
		rec, err := e.stock.Get(context.Background(), "P1", w)
		if err != nil {
			t.Fatalf("read %s: %v", w, err)
		}
		if rec != nil {
			sum += rec.StockLevel
		}
	}
	return sum
}

func TestIntegration_ConcurrentTransfersConserveStock(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	warehouses := []string{"A", "B", "C"}

	for _, w := range []string{"A", "B"} {
		if err := env.stock.Put(ctx, record(w, 100, 10)); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	initial := env.total(t, warehouses...)

	svc := NewTransferService(env.stock, env.cache, env.cache, zap.NewNop())

	var successCount, rejectCount atomic.Int32
	var wg sync.WaitGroup
	totalRequests := 60

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id)))
			from := warehouses[r.Intn(len(warehouses))]
			to := warehouses[(r.Intn(len(warehouses)-1)+1+indexOf(warehouses, from))%len(warehouses)]

			_, err := svc.Transfer(ctx, domain.Transfer{
				ProductID:     "P1",
				FromWarehouse: from,
				ToWarehouse:   to,
				Quantity:      1 + r.Intn(5),
				RequestID:     uuid.NewString(),
			})
			switch domain.KindOf(err) {
			case domain.KindInsufficientStock, domain.KindSourceNotFound:
				rejectCount.Add(1)
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if got := int(successCount.Load() + rejectCount.Load()); got != totalRequests {
		t.Errorf("expected %d resolved transfers, got %d", totalRequests, got)
	}
	if successCount.Load() == 0 {
		t.Error("expected at least one successful transfer")
	}

	// Verify conservation
	if final := env.total(t, warehouses...); final != initial {
		t.Errorf("expected total stock %d, got %d", initial, final)
	}

	entries, err := env.cache.Entries(ctx)
	if err != nil {
		t.Fatalf("read reconciliation log: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no partial transfers, got %d", len(entries))
	}
}

func TestIntegration_OrderFlowOverRedis(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	if err := env.stock.Put(ctx, record("A", 5, 10)); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, domain.LowStockAlertSubject, mock.Anything).Return(nil)
	svc := NewOrderService(env.stock, storage.NewMemoryOrderLedger(), notifier, zap.NewNop())

	// supply order restocks immediately
	if _, err := svc.CreateOrder(ctx, domain.OrderCreate{
		ProductID: "P1", WarehouseID: "A", Quantity: 4, Status: domain.OrderStatusCompleted,
	}); err != nil {
		t.Fatalf("supply order failed: %v", err)
	}

	order, err := svc.CreateOrder(ctx, domain.OrderCreate{ProductID: "P1", WarehouseID: "A", Quantity: 7})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.UpdateOrder(ctx, order.ID, completeAt("A")); err != nil {
			t.Fatalf("complete order (attempt %d) failed: %v", i+1, err)
		}
	}

	rec, err := env.stock.Get(ctx, "P1", "A")
	if err != nil || rec == nil {
		t.Fatalf("read stock: %v", err)
	}
	if rec.StockLevel != 2 {
		t.Errorf("expected stock 2, got %d", rec.StockLevel)
	}
	notifier.AssertNumberOfCalls(t, "Send", 1)
}

func indexOf(items []string, item string) int {
	for i, v := range items {
		if v == item {
			return i
		}
	}
	return -1
}
