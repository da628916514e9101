package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const pgUniqueViolation = "23505"

const orderColumns = `order_id, product_id, warehouse_id, quantity, status, created_at`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	order_id     TEXT PRIMARY KEY,
	product_id   TEXT NOT NULL,
	warehouse_id TEXT NOT NULL,
	quantity     INTEGER NOT NULL CHECK (quantity > 0),
	status       TEXT NOT NULL CHECK (status IN ('Pending', 'Completed', 'Cancelled')),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PgxQuerier is the subset of *pgxpool.Pool the ledger needs.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresOrderLedger struct {
	db PgxQuerier
}

func NewPostgresOrderLedger(db PgxQuerier) *PostgresOrderLedger {
	return &PostgresOrderLedger{db: db}
}

func (p *PostgresOrderLedger) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createOrdersTable); err != nil {
		return fmt.Errorf("create orders: %w", err)
	}
	return nil
}

func (p *PostgresOrderLedger) Insert(ctx context.Context, order domain.Order) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.ProductID, order.WarehouseID, order.Quantity, string(order.Status), order.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return port.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := row.Scan(&order.ID, &order.ProductID, &order.WarehouseID, &order.Quantity, &status, &order.CreatedAt)
	order.Status = domain.OrderStatus(status)
	return order, err
}

func (p *PostgresOrderLedger) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := scanOrder(p.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &order, nil
}

func (p *PostgresOrderLedger) Update(ctx context.Context, orderID string, expected domain.OrderStatus, update domain.OrderUpdate) error {
	b := setOrderUpdate(newUpdateBuilder("orders", dollar), update)
	if b.Empty() {
		return nil
	}
	query, args := b.Where("order_id", orderID).Where("status", string(expected)).Build()

	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (p *PostgresOrderLedger) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = p.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, order_id`)
	} else {
		rows, err = p.db.Query(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at, order_id`, string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (p *PostgresOrderLedger) Delete(ctx context.Context, orderID string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}
