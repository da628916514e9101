package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-inventory/internal/config"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
)

type HTTPHandler struct {
	transfers *service.TransferService
	orders    *service.OrderService
	products  *service.ProductService
	logger    *zap.Logger
}

type TransferRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	FromWarehouse string `json:"from_warehouse" binding:"required"`
	ToWarehouse   string `json:"to_warehouse" binding:"required,nefield=FromWarehouse"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	RequestID     string `json:"request_id"`
}

type ProductRequest struct {
	ProductID        string `json:"product_id" binding:"required"`
	WarehouseID      string `json:"warehouse_id" binding:"required"`
	ProductName      string `json:"product_name" binding:"required"`
	StockLevel       *int   `json:"stock_level" binding:"required,min=0"`
	ReorderThreshold *int   `json:"reorder_threshold" binding:"required,min=0"`
	Supplier         string `json:"supplier" binding:"required"`
	Category         string `json:"category" binding:"required"`
	LastUpdated      string `json:"last_updated" binding:"omitempty,datetime=2006-01-02"`
}

type ProductUpdateRequest struct {
	ProductName      *string `json:"product_name" binding:"omitempty,min=1"`
	StockLevel       *int    `json:"stock_level" binding:"omitempty,min=0"`
	ReorderThreshold *int    `json:"reorder_threshold" binding:"omitempty,min=0"`
	Supplier         *string `json:"supplier" binding:"omitempty,min=1"`
	Category         *string `json:"category" binding:"omitempty,min=1"`
}

type CreateOrderRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	WarehouseID string `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Status      string `json:"status" binding:"omitempty,oneof=Pending Completed Cancelled"`
}

type UpdateOrderRequest struct {
	Status      *string `json:"status" binding:"omitempty,oneof=Pending Completed Cancelled"`
	WarehouseID *string `json:"warehouse_id"`
	Quantity    *int    `json:"quantity" binding:"omitempty,min=1"`
	ProductID   *string `json:"product_id" binding:"omitempty,min=1"`
}

// ProductResponse renders last_updated in the same date layout the API
// accepts.
type ProductResponse struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id"`
	ProductName      string `json:"product_name"`
	StockLevel       int    `json:"stock_level"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Supplier         string `json:"supplier"`
	Category         string `json:"category"`
	LastUpdated      string `json:"last_updated"`
}

type ProductPageResponse struct {
	Items      []ProductResponse `json:"items"`
	NextOffset string            `json:"next_offset,omitempty"`
}

type productKey struct {
	WarehouseID string `form:"warehouseId" binding:"required"`
}

type pageQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset string `form:"offset"`
}

type orderQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=Pending Completed Cancelled"`
}

func NewHTTPHandler(transfers *service.TransferService, orders *service.OrderService, products *service.ProductService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		transfers: transfers,
		orders:    orders,
		products:  products,
		logger:    logger,
	}
}

// Router builds the gin engine with tracing, correlation and every route.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(config.ServiceName), Correlation())

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.POST("/transfers", h.Transfer)

	api.POST("/products", h.AddProduct)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:productId", h.GetProduct)
	api.PATCH("/products/:productId", h.UpdateProduct)
	api.DELETE("/products/:productId", h.DeleteProduct)
	api.GET("/warehouses/:warehouseId/products", h.ListWarehouseProducts)

	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:orderId", h.GetOrder)
	api.PATCH("/orders/:orderId", h.UpdateOrder)
	api.DELETE("/orders/:orderId", h.DeleteOrder)

	return r
}

func (h *HTTPHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, domain.KindInvalidTransfer, err)
		return
	}

	result, err := h.transfers.Transfer(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *HTTPHandler) AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	rec := domain.StockRecord{
		ProductID:        req.ProductID,
		WarehouseID:      req.WarehouseID,
		ProductName:      req.ProductName,
		StockLevel:       *req.StockLevel,
		ReorderThreshold: *req.ReorderThreshold,
		Supplier:         req.Supplier,
		Category:         req.Category,
	}
	if req.LastUpdated != "" {
		// already checked by the datetime binding
		rec.LastUpdated, _ = time.Parse(domain.DateLayout, req.LastUpdated)
	}

	stored, err := h.products.Add(c.Request.Context(), rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, productResponse(*stored))
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	records, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, productResponses(records))
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	var key productKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	rec, err := h.products.Get(c.Request.Context(), c.Param("productId"), key.WarehouseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, productResponse(*rec))
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	var key productKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	rec, err := h.products.Update(c.Request.Context(), c.Param("productId"), key.WarehouseID, domain.StockUpdate{
		ProductName:      req.ProductName,
		StockLevel:       req.StockLevel,
		ReorderThreshold: req.ReorderThreshold,
		Supplier:         req.Supplier,
		Category:         req.Category,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, productResponse(*rec))
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	var key productKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	productID := c.Param("productId")
	if err := h.products.Delete(c.Request.Context(), productID, key.WarehouseID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product_id": productID, "warehouse_id": key.WarehouseID})
}

func (h *HTTPHandler) ListWarehouseProducts(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	page, err := h.products.ListByWarehouse(c.Request.Context(), c.Param("warehouseId"), q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, ProductPageResponse{
		Items:      productResponses(page.Items),
		NextOffset: page.NextOffset,
	})
}

func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	var q orderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), domain.OrderStatus(q.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *HTTPHandler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, domain.KindInvalidRequest, err)
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), c.Param("orderId"), req.toDomain())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *HTTPHandler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order_id": orderID})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r TransferRequest) toDomain() domain.Transfer {
	return domain.Transfer{
		ProductID:     r.ProductID,
		FromWarehouse: r.FromWarehouse,
		ToWarehouse:   r.ToWarehouse,
		Quantity:      r.Quantity,
		RequestID:     r.RequestID,
	}
}

func (r CreateOrderRequest) toDomain() domain.OrderCreate {
	return domain.OrderCreate{
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		Status:      domain.OrderStatus(r.Status),
	}
}

func (r UpdateOrderRequest) toDomain() domain.OrderUpdate {
	u := domain.OrderUpdate{
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		ProductID:   r.ProductID,
	}
	if r.Status != nil {
		s := domain.OrderStatus(*r.Status)
		u.Status = &s
	}
	return u
}

func productResponse(r domain.StockRecord) ProductResponse {
	return ProductResponse{
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		ProductName:      r.ProductName,
		StockLevel:       r.StockLevel,
		ReorderThreshold: r.ReorderThreshold,
		Supplier:         r.Supplier,
		Category:         r.Category,
		LastUpdated:      r.LastUpdated.Format(domain.DateLayout),
	}
}

func productResponses(records []domain.StockRecord) []ProductResponse {
	out := make([]ProductResponse, 0, len(records))
	for _, r := range records {
		out = append(out, productResponse(r))
	}
	return out
}
