package storage

import (
	"fmt"
	"strings"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

// placeholderStyle renders the n-th (1-based) bind parameter.
type placeholderStyle func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// updateBuilder assembles "UPDATE t SET a = ?, b = ? WHERE ..." statements
// from the fields a partial update actually carries.
type updateBuilder struct {
	table       string
	placeholder placeholderStyle
	sets        []string
	wheres      []string
	args        []any
}

func newUpdateBuilder(table string, placeholder placeholderStyle) *updateBuilder {
	return &updateBuilder{table: table, placeholder: placeholder}
}

func (b *updateBuilder) next(value any) string {
	b.args = append(b.args, value)
	return b.placeholder(len(b.args))
}

// Set assigns a literal value.
func (b *updateBuilder) Set(column string, value any) *updateBuilder {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", column, b.next(value)))
	return b
}

// Expr assigns a SQL expression, with %s standing for the bound value.
func (b *updateBuilder) Expr(column, expr string, value any) *updateBuilder {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", column, fmt.Sprintf(expr, b.next(value))))
	return b
}

func (b *updateBuilder) Where(column string, value any) *updateBuilder {
	b.wheres = append(b.wheres, fmt.Sprintf("%s = %s", column, b.next(value)))
	return b
}

func (b *updateBuilder) Empty() bool {
	return len(b.sets) == 0
}

func (b *updateBuilder) Build() (string, []any) {
	query := fmt.Sprintf("UPDATE %s SET %s", b.table, strings.Join(b.sets, ", "))
	if len(b.wheres) > 0 {
		query += " WHERE " + strings.Join(b.wheres, " AND ")
	}
	return query, b.args
}

func setStockUpdate(b *updateBuilder, u domain.StockUpdate) *updateBuilder {
	if u.ProductName != nil {
		b.Set("product_name", *u.ProductName)
	}
	if u.StockLevel != nil {
		b.Set("stock_level", *u.StockLevel)
	}
	if u.ReorderThreshold != nil {
		b.Set("reorder_threshold", *u.ReorderThreshold)
	}
	if u.Supplier != nil {
		b.Set("supplier", *u.Supplier)
	}
	if u.Category != nil {
		b.Set("category", *u.Category)
	}
	return b
}

func setOrderUpdate(b *updateBuilder, u domain.OrderUpdate) *updateBuilder {
	if u.ProductID != nil {
		b.Set("product_id", *u.ProductID)
	}
	if u.WarehouseID != nil {
		b.Set("warehouse_id", *u.WarehouseID)
	}
	if u.Quantity != nil {
		b.Set("quantity", *u.Quantity)
	}
	if u.Status != nil {
		b.Set("status", string(*u.Status))
	}
	return b
}

// stockUpdateFields flattens an update into hash field/value pairs.
func stockUpdateFields(u domain.StockUpdate) []any {
	var fields []any
	if u.ProductName != nil {
		fields = append(fields, "product_name", *u.ProductName)
	}
	if u.StockLevel != nil {
		fields = append(fields, "stock_level", *u.StockLevel)
	}
	if u.ReorderThreshold != nil {
		fields = append(fields, "reorder_threshold", *u.ReorderThreshold)
	}
	if u.Supplier != nil {
		fields = append(fields, "supplier", *u.Supplier)
	}
	if u.Category != nil {
		fields = append(fields, "category", *u.Category)
	}
	return fields
}
