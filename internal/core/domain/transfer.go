package domain

type Transfer struct {
	ProductID     string
	FromWarehouse string
	ToWarehouse   string
	Quantity      int
	// RequestID is an optional idempotency key supplied by the caller.
	RequestID string
}

func (t Transfer) Validate() error {
	switch {
	case t.ProductID == "":
		return Errorf(KindInvalidTransfer, "product_id is required")
	case t.FromWarehouse == "" || t.ToWarehouse == "":
		return Errorf(KindInvalidTransfer, "from_warehouse and to_warehouse are required")
	case t.FromWarehouse == t.ToWarehouse:
		return Errorf(KindInvalidTransfer, "source and destination warehouses must be different")
	case t.Quantity < 1:
		return Errorf(KindInvalidTransfer, "quantity must be >= 1")
	}
	return nil
}

type TransferResult struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity_transferred"`
	FromWarehouse string `json:"from_warehouse"`
	ToWarehouse   string `json:"to_warehouse"`
}
