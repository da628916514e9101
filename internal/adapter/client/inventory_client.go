package client

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
)

type stockRecord struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id"`
	ProductName      string `json:"product_name"`
	StockLevel       int    `json:"stock_level"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Supplier         string `json:"supplier"`
	Category         string `json:"category"`
	LastUpdated      string `json:"last_updated"`
}

type listResponse struct {
	Success bool          `json:"success"`
	Data    []stockRecord `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

// InventoryClient reads stock records from a running inventory API. It lets
// the low-stock monitor run without direct access to the store.
type InventoryClient struct {
	http *resty.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *InventoryClient) List(ctx context.Context) ([]domain.StockRecord, error) {
	var (
		result listResponse
		failed errorResponse
	)

	req := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&failed)
	if id := observability.CorrelationID(ctx); id != "" {
		req.SetHeader(observability.CorrelationHeader, id)
	}

	resp, err := req.Get("/api/products")
	if err != nil {
		return nil, domain.Wrap(domain.KindInfrastructure, err, "list products")
	}
	if resp.IsError() {
		return nil, domain.Errorf(domain.KindInfrastructure, "list products: status %d: %s", resp.StatusCode(), failed.Error)
	}
	if !result.Success {
		return nil, domain.Errorf(domain.KindInfrastructure, "list products: unsuccessful response")
	}

	records := make([]domain.StockRecord, 0, len(result.Data))
	for _, r := range result.Data {
		rec, err := r.toDomain()
		if err != nil {
			return nil, domain.Wrap(domain.KindInfrastructure, err, "decode product %s", r.ProductID)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r stockRecord) toDomain() (domain.StockRecord, error) {
	day, err := time.Parse(domain.DateLayout, r.LastUpdated)
	if err != nil {
		return domain.StockRecord{}, err
	}
	return domain.StockRecord{
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		ProductName:      r.ProductName,
		StockLevel:       r.StockLevel,
		ReorderThreshold: r.ReorderThreshold,
		Supplier:         r.Supplier,
		Category:         r.Category,
		LastUpdated:      day,
	}, nil
}
