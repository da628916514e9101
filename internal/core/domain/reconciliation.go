package domain

import "time"

// ReconciliationEntry records a transfer whose credit step failed after the
// source had already been debited.
type ReconciliationEntry struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	FromWarehouse string    `json:"from_warehouse"`
	ToWarehouse   string    `json:"to_warehouse"`
	Quantity      int       `json:"quantity"`
	CompletedStep string    `json:"completed_step"`
	FailedStep    string    `json:"failed_step"`
	Error         string    `json:"error"`
	RecordedAt    time.Time `json:"recorded_at"`
}
