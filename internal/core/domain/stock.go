package domain

import "time"

// DateLayout is the wire and storage format of StockRecord.LastUpdated.
const DateLayout = "2006-01-02"

type StockRecord struct {
	ProductID        string    `json:"product_id"`
	WarehouseID      string    `json:"warehouse_id"`
	ProductName      string    `json:"product_name"`
	StockLevel       int       `json:"stock_level"`
	ReorderThreshold int       `json:"reorder_threshold"`
	Supplier         string    `json:"supplier"`
	Category         string    `json:"category"`
	LastUpdated      time.Time `json:"last_updated"`
}

// BelowThreshold reports whether the record belongs in a low-stock report.
func (r StockRecord) BelowThreshold() bool {
	return r.StockLevel < r.ReorderThreshold
}

// CloneTo materializes the record at another warehouse, keeping the
// descriptive fields and starting at the given stock level.
func (r StockRecord) CloneTo(warehouseID string, stockLevel int, day time.Time) StockRecord {
	return StockRecord{
		ProductID:        r.ProductID,
		WarehouseID:      warehouseID,
		ProductName:      r.ProductName,
		StockLevel:       stockLevel,
		ReorderThreshold: r.ReorderThreshold,
		Supplier:         r.Supplier,
		Category:         r.Category,
		LastUpdated:      Day(day),
	}
}

// Validate checks the fields required to store a record.
func (r StockRecord) Validate() error {
	switch {
	case r.ProductID == "":
		return Errorf(KindInvalidRequest, "product_id is required")
	case r.WarehouseID == "":
		return Errorf(KindInvalidRequest, "warehouse_id is required")
	case r.ProductName == "":
		return Errorf(KindInvalidRequest, "product_name is required")
	case r.Supplier == "":
		return Errorf(KindInvalidRequest, "supplier is required")
	case r.Category == "":
		return Errorf(KindInvalidRequest, "category is required")
	case r.StockLevel < 0:
		return Errorf(KindInvalidRequest, "stock_level must be >= 0")
	case r.ReorderThreshold < 0:
		return Errorf(KindInvalidRequest, "reorder_threshold must be >= 0")
	}
	return nil
}

// StockPage is one page of a warehouse listing. NextOffset is empty on the
// last page.
type StockPage struct {
	Items      []StockRecord `json:"items"`
	NextOffset string        `json:"next_offset,omitempty"`
}

// StockUpdate carries a partial update of a record. Nil fields are left alone.
type StockUpdate struct {
	ProductName      *string `json:"product_name,omitempty"`
	StockLevel       *int    `json:"stock_level,omitempty"`
	ReorderThreshold *int    `json:"reorder_threshold,omitempty"`
	Supplier         *string `json:"supplier,omitempty"`
	Category         *string `json:"category,omitempty"`
}

func (u StockUpdate) Empty() bool {
	return u.ProductName == nil && u.StockLevel == nil && u.ReorderThreshold == nil &&
		u.Supplier == nil && u.Category == nil
}

// Fields lists the names of the columns the update touches.
func (u StockUpdate) Fields() []string {
	var fields []string
	if u.ProductName != nil {
		fields = append(fields, "product_name")
	}
	if u.StockLevel != nil {
		fields = append(fields, "stock_level")
	}
	if u.ReorderThreshold != nil {
		fields = append(fields, "reorder_threshold")
	}
	if u.Supplier != nil {
		fields = append(fields, "supplier")
	}
	if u.Category != nil {
		fields = append(fields, "category")
	}
	return fields
}

func (u StockUpdate) Validate() error {
	if u.Empty() {
		return Errorf(KindInvalidRequest, "at least one field must be updated")
	}
	if u.StockLevel != nil && *u.StockLevel < 0 {
		return Errorf(KindInvalidRequest, "stock_level must be >= 0")
	}
	if u.ReorderThreshold != nil && *u.ReorderThreshold < 0 {
		return Errorf(KindInvalidRequest, "reorder_threshold must be >= 0")
	}
	if u.ProductName != nil && *u.ProductName == "" {
		return Errorf(KindInvalidRequest, "product_name cannot be empty")
	}
	return nil
}

// Apply returns a copy of r with the update applied.
func (u StockUpdate) Apply(r StockRecord) StockRecord {
	if u.ProductName != nil {
		r.ProductName = *u.ProductName
	}
	if u.StockLevel != nil {
		r.StockLevel = *u.StockLevel
	}
	if u.ReorderThreshold != nil {
		r.ReorderThreshold = *u.ReorderThreshold
	}
	if u.Supplier != nil {
		r.Supplier = *u.Supplier
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	return r
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
