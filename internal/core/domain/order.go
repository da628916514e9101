package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type Order struct {
	ID          string      `json:"order_id"`
	ProductID   string      `json:"product_id"`
	WarehouseID string      `json:"warehouse_id"`
	Quantity    int         `json:"quantity"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrderCreate struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	Status      OrderStatus
}

func (c OrderCreate) Validate() error {
	switch {
	case c.ProductID == "":
		return Errorf(KindInvalidRequest, "product_id is required")
	case c.WarehouseID == "":
		return Errorf(KindInvalidRequest, "warehouse_id is required")
	case c.Quantity < 1:
		return Errorf(KindInvalidRequest, "quantity must be >= 1")
	case c.Status != "" && !c.Status.Valid():
		return Errorf(KindInvalidRequest, "status must be one of Pending, Completed, Cancelled")
	}
	return nil
}

// OrderUpdate is a partial order update. Nil fields are left alone.
type OrderUpdate struct {
	Status      *OrderStatus
	WarehouseID *string
	Quantity    *int
	ProductID   *string
}

func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.WarehouseID == nil && u.Quantity == nil && u.ProductID == nil
}

func (u OrderUpdate) Validate() error {
	if u.Empty() {
		return Errorf(KindInvalidRequest, "at least one field must be updated")
	}
	if u.Status != nil && !u.Status.Valid() {
		return Errorf(KindInvalidRequest, "status must be one of Pending, Completed, Cancelled")
	}
	if u.Quantity != nil && *u.Quantity < 1 {
		return Errorf(KindInvalidRequest, "quantity must be >= 1")
	}
	if u.ProductID != nil && *u.ProductID == "" {
		return Errorf(KindInvalidRequest, "product_id cannot be empty")
	}
	return nil
}

// Apply returns a copy of o with the update applied.
func (u OrderUpdate) Apply(o Order) Order {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.WarehouseID != nil {
		o.WarehouseID = *u.WarehouseID
	}
	if u.Quantity != nil {
		o.Quantity = *u.Quantity
	}
	if u.ProductID != nil {
		o.ProductID = *u.ProductID
	}
	return o
}

// Replays reports whether applying u to o would change nothing.
func (u OrderUpdate) Replays(o Order) bool {
	return u.Apply(o) == o
}
