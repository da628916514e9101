package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
)

func newGRPCClient(t *testing.T, records ...domain.StockRecord) (*InventoryServiceClient, *storage.MemoryStockAdapter) {
	t.Helper()
	logger := zap.NewNop()
	stock := storage.NewMemoryStockAdapter(records...)
	cache := storage.NewMemoryCache()
	h := NewGRPCHandler(
		service.NewTransferService(stock, cache, cache, logger),
		service.NewOrderService(stock, storage.NewMemoryOrderLedger(), nil, logger),
		logger,
	)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(CorrelationInterceptor()))
	RegisterInventoryServer(srv, h)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewInventoryServiceClient(conn), stock
}

func TestGRPCTransfer(t *testing.T) {
	client, stock := newGRPCClient(t, widget("W1", 10))

	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), correlationMDKey, "corr-9")
	result, err := client.Transfer(ctx, &TransferRequest{
		ProductID: "P1", FromWarehouse: "W1", ToWarehouse: "W2", Quantity: 3,
	}, grpc.Header(&header))

	require.NoError(t, err)
	assert.Equal(t, domain.TransferResult{ProductID: "P1", Quantity: 3, FromWarehouse: "W1", ToWarehouse: "W2"}, *result)
	assert.Equal(t, []string{"corr-9"}, header.Get(correlationMDKey))

	dest, err := stock.Get(context.Background(), "P1", "W2")
	require.NoError(t, err)
	require.NotNil(t, dest)
	assert.Equal(t, 3, dest.StockLevel)
}

func TestGRPCTransfer_Errors(t *testing.T) {
	client, _ := newGRPCClient(t, widget("W1", 2))

	tests := []struct {
		name string
		req  *TransferRequest
		code codes.Code
	}{
		{"missing product", &TransferRequest{FromWarehouse: "W1", ToWarehouse: "W2", Quantity: 1}, codes.InvalidArgument},
		{"same warehouse", &TransferRequest{ProductID: "P1", FromWarehouse: "W1", ToWarehouse: "W1", Quantity: 1}, codes.InvalidArgument},
		{"insufficient", &TransferRequest{ProductID: "P1", FromWarehouse: "W1", ToWarehouse: "W2", Quantity: 3}, codes.FailedPrecondition},
		{"unknown source", &TransferRequest{ProductID: "P1", FromWarehouse: "W7", ToWarehouse: "W2", Quantity: 1}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Transfer(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGRPCOrders(t *testing.T) {
	client, stock := newGRPCClient(t, widget("W1", 5))
	ctx := context.Background()

	order, err := client.CreateOrder(ctx, &CreateOrderRequest{ProductID: "P1", WarehouseID: "W1", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	completed := string(domain.OrderStatusCompleted)
	_, err = client.UpdateOrder(ctx, &UpdateOrderCall{
		OrderID:            order.ID,
		UpdateOrderRequest: UpdateOrderRequest{Status: &completed},
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	w1 := "W1"
	order, err = client.UpdateOrder(ctx, &UpdateOrderCall{
		OrderID:            order.ID,
		UpdateOrderRequest: UpdateOrderRequest{Status: &completed, WarehouseID: &w1},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)

	rec, err := stock.Get(ctx, "P1", "W1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.StockLevel)

	_, err = client.UpdateOrder(ctx, &UpdateOrderCall{
		OrderID:            "missing",
		UpdateOrderRequest: UpdateOrderRequest{Status: &completed, WarehouseID: &w1},
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.UpdateOrder(ctx, &UpdateOrderCall{UpdateOrderRequest: UpdateOrderRequest{Status: &completed}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCCodeMapping(t *testing.T) {
	assert.Equal(t, codes.AlreadyExists, grpcCode(domain.KindDuplicateRequest))
	assert.Equal(t, codes.Internal, grpcCode(domain.KindPartialTransfer))
	assert.Equal(t, codes.FailedPrecondition, grpcCode(domain.KindInvalidTransition))
}
