package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
)

const (
	CodecName         = "json"
	InventoryService  = "inventory.v1.InventoryService"
	correlationMDKey  = "x-correlation-id"
	transferMethod    = "/" + InventoryService + "/Transfer"
	createOrderMethod = "/" + InventoryService + "/CreateOrder"
	updateOrderMethod = "/" + InventoryService + "/UpdateOrder"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the plain request structs over gRPC so the service
// needs no generated message types.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

type UpdateOrderCall struct {
	OrderID string `json:"order_id" binding:"required"`
	UpdateOrderRequest
}

type InventoryServer interface {
	Transfer(context.Context, *TransferRequest) (*domain.TransferResult, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*domain.Order, error)
	UpdateOrder(context.Context, *UpdateOrderCall) (*domain.Order, error)
}

type GRPCHandler struct {
	transfers *service.TransferService
	orders    *service.OrderService
	logger    *zap.Logger
}

func NewGRPCHandler(transfers *service.TransferService, orders *service.OrderService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{transfers: transfers, orders: orders, logger: logger}
}

func (h *GRPCHandler) Transfer(ctx context.Context, req *TransferRequest) (*domain.TransferResult, error) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := h.transfers.Transfer(ctx, req.toDomain())
	if err != nil {
		return nil, h.statusError(ctx, transferMethod, err)
	}
	return result, nil
}

func (h *GRPCHandler) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	order, err := h.orders.CreateOrder(ctx, req.toDomain())
	if err != nil {
		return nil, h.statusError(ctx, createOrderMethod, err)
	}
	return order, nil
}

func (h *GRPCHandler) UpdateOrder(ctx context.Context, req *UpdateOrderCall) (*domain.Order, error) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	order, err := h.orders.UpdateOrder(ctx, req.OrderID, req.toDomain())
	if err != nil {
		return nil, h.statusError(ctx, updateOrderMethod, err)
	}
	return order, nil
}

func (h *GRPCHandler) statusError(ctx context.Context, method string, err error) error {
	code := grpcCode(domain.KindOf(err))
	if code == codes.Internal {
		observability.LoggerFrom(ctx, h.logger).Error("rpc failed",
			zap.String("method", method),
			zap.Error(err),
		)
	}
	return status.Error(code, domain.MessageOf(err))
}

// CorrelationInterceptor is the gRPC counterpart of Correlation.
func CorrelationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(correlationMDKey); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(correlationMDKey, id))
		return handler(observability.WithCorrelationID(ctx, id), req)
	}
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryService,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transfer", Handler: transferHandler},
		{MethodName: "CreateOrder", Handler: createOrderHandler},
		{MethodName: "UpdateOrder", Handler: updateOrderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.json",
}

func transferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: transferMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).Transfer(ctx, req.(*TransferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func createOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).CreateOrder(ctx, req.(*CreateOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateOrderCall)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).UpdateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).UpdateOrder(ctx, req.(*UpdateOrderCall))
	}
	return interceptor(ctx, in, info, handler)
}

type InventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) *InventoryServiceClient {
	return &InventoryServiceClient{cc: cc}
}

func (c *InventoryServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*domain.TransferResult, error) {
	out := new(domain.TransferResult)
	if err := c.invoke(ctx, transferMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*domain.Order, error) {
	out := new(domain.Order)
	if err := c.invoke(ctx, createOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) UpdateOrder(ctx context.Context, in *UpdateOrderCall, opts ...grpc.CallOption) (*domain.Order, error) {
	out := new(domain.Order)
	if err := c.invoke(ctx, updateOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
