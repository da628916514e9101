package domain

import (
	"fmt"
	"strings"
)

const (
	LowStockSubject      = "Daily Low Stock Report"
	LowStockAlertSubject = "Low Stock Alert"
)

type LowStockReport struct {
	Items   []StockRecord `json:"items"`
	Subject string        `json:"subject"`
	Message string        `json:"message"`
	Sent    bool          `json:"sent"`
}

// NewLowStockReport collects the records below their reorder threshold.
func NewLowStockReport(records []StockRecord) LowStockReport {
	report := LowStockReport{Subject: LowStockSubject}
	lines := make([]string, 0)
	for _, r := range records {
		if !r.BelowThreshold() {
			continue
		}
		report.Items = append(report.Items, r)
		lines = append(lines, r.Summary())
	}
	report.Message = strings.Join(lines, "\n")
	return report
}

func (r LowStockReport) Empty() bool {
	return len(r.Items) == 0
}

// Summary is the one-line description used in low-stock notifications.
func (r StockRecord) Summary() string {
	return fmt.Sprintf("%s (ID: %s, warehouse: %s) - Stock: %d, Threshold: %d",
		r.ProductName, r.ProductID, r.WarehouseID, r.StockLevel, r.ReorderThreshold)
}
