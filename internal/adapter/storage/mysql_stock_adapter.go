package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const mysqlDuplicateEntry = 1062

const stockColumns = `product_id, warehouse_id, product_name, stock_level, reorder_threshold, supplier, category, last_updated`

const createStockTable = `
CREATE TABLE IF NOT EXISTS stock_records (
	product_id        VARCHAR(64)  NOT NULL,
	warehouse_id      VARCHAR(64)  NOT NULL,
	product_name      VARCHAR(255) NOT NULL,
	stock_level       INT          NOT NULL,
	reorder_threshold INT          NOT NULL,
	supplier          VARCHAR(255) NOT NULL,
	category          VARCHAR(255) NOT NULL,
	last_updated      DATE         NOT NULL,
	PRIMARY KEY (product_id, warehouse_id),
	INDEX idx_stock_warehouse (warehouse_id, product_id)
)`

// MySQLStockAdapter stores records in a single table keyed by
// (product_id, warehouse_id). Stock changes are additive updates so that
// concurrent adjustments of one row never lose a write.
type MySQLStockAdapter struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLStockAdapter(db *sql.DB) *MySQLStockAdapter {
	return &MySQLStockAdapter{db: db, now: time.Now}
}

func (m *MySQLStockAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createStockTable); err != nil {
		return fmt.Errorf("create stock_records: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (domain.StockRecord, error) {
	var rec domain.StockRecord
	err := row.Scan(&rec.ProductID, &rec.WarehouseID, &rec.ProductName, &rec.StockLevel,
		&rec.ReorderThreshold, &rec.Supplier, &rec.Category, &rec.LastUpdated)
	rec.LastUpdated = domain.Day(rec.LastUpdated)
	return rec, err
}

func (m *MySQLStockAdapter) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	rec, err := scanStock(m.db.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock_records WHERE product_id = ? AND warehouse_id = ?`,
		productID, warehouseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock record: %w", err)
	}
	return &rec, nil
}

func (m *MySQLStockAdapter) Put(ctx context.Context, rec domain.StockRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock_records (`+stockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			product_name = VALUES(product_name),
			stock_level = VALUES(stock_level),
			reorder_threshold = VALUES(reorder_threshold),
			supplier = VALUES(supplier),
			category = VALUES(category),
			last_updated = VALUES(last_updated)`,
		stockArgs(rec)...,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

func (m *MySQLStockAdapter) Create(ctx context.Context, rec domain.StockRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock_records (`+stockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stockArgs(rec)...,
	)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return port.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

func (m *MySQLStockAdapter) Adjust(ctx context.Context, productID, warehouseID string, delta int) error {
	query, args := newUpdateBuilder("stock_records", questionMark).
		Expr("stock_level", "stock_level + %s", delta).
		Set("last_updated", domain.Day(m.now())).
		Where("product_id", productID).
		Where("warehouse_id", warehouseID).
		Build()

	return m.exec(ctx, "adjust stock record", query, args)
}

func (m *MySQLStockAdapter) Update(ctx context.Context, productID, warehouseID string, update domain.StockUpdate) error {
	b := setStockUpdate(newUpdateBuilder("stock_records", questionMark), update)
	if b.Empty() {
		return nil
	}
	query, args := b.Set("last_updated", domain.Day(m.now())).
		Where("product_id", productID).
		Where("warehouse_id", warehouseID).
		Build()

	return m.exec(ctx, "update stock record", query, args)
}

func (m *MySQLStockAdapter) Delete(ctx context.Context, productID, warehouseID string) error {
	return m.exec(ctx, "delete stock record",
		`DELETE FROM stock_records WHERE product_id = ? AND warehouse_id = ?`,
		[]any{productID, warehouseID},
	)
}

// MySQLDSN forces clientFoundRows on dsn. Without it an UPDATE that leaves
// the row unchanged reports zero rows and exec would call it not found.
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// exec runs a single-row statement and maps zero matched rows to
// port.ErrNotFound. The connection must come from a MySQLDSN.
func (m *MySQLStockAdapter) exec(ctx context.Context, op, query string, args []any) error {
	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (m *MySQLStockAdapter) List(ctx context.Context) ([]domain.StockRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock_records ORDER BY product_id, warehouse_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	return collectStock(rows)
}

func (m *MySQLStockAdapter) ListByWarehouse(ctx context.Context, warehouseID string, limit int, cursor string) ([]domain.StockRecord, string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+stockColumns+` FROM stock_records
		WHERE warehouse_id = ? AND product_id > ?
		ORDER BY product_id
		LIMIT ?`,
		warehouseID, cursor, limit+1,
	)
	if err != nil {
		return nil, "", fmt.Errorf("list warehouse stock: %w", err)
	}

	records, err := collectStock(rows)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		next = records[limit-1].ProductID
	}
	return records, next, nil
}

func collectStock(rows *sql.Rows) ([]domain.StockRecord, error) {
	defer rows.Close()

	records := []domain.StockRecord{}
	for rows.Next() {
		rec, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock records: %w", err)
	}
	return records, nil
}

func stockArgs(rec domain.StockRecord) []any {
	return []any{
		rec.ProductID, rec.WarehouseID, rec.ProductName, rec.StockLevel,
		rec.ReorderThreshold, rec.Supplier, rec.Category, domain.Day(rec.LastUpdated),
	}
}
