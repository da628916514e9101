package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const (
	stockKeyPrefix       = "stock:"
	stockIndexKey        = "stock-index"
	warehouseIndexPrefix = "stock-warehouse:"
)

var createStockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end

redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('SADD', KEYS[2], KEYS[1])
redis.call('ZADD', KEYS[3], 0, ARGV[1])
return 1
`)

// adjustStockScript refuses to materialize a record: HINCRBY alone would
// create the hash with only a stock_level field.
var adjustStockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end

local level = redis.call('HINCRBY', KEYS[1], 'stock_level', ARGV[1])
redis.call('HSET', KEYS[1], 'last_updated', ARGV[2])
return level
`)

var updateStockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end

redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

var deleteStockScript = redis.NewScript(`
if redis.call('DEL', KEYS[1]) == 0 then
	return 0
end

redis.call('SREM', KEYS[2], KEYS[1])
redis.call('ZREM', KEYS[3], ARGV[1])
return 1
`)

type stockHash struct {
	ProductID        string `redis:"product_id"`
	WarehouseID      string `redis:"warehouse_id"`
	ProductName      string `redis:"product_name"`
	StockLevel       int    `redis:"stock_level"`
	ReorderThreshold int    `redis:"reorder_threshold"`
	Supplier         string `redis:"supplier"`
	Category         string `redis:"category"`
	LastUpdated      string `redis:"last_updated"`
}

func (h stockHash) record() domain.StockRecord {
	rec := domain.StockRecord{
		ProductID:        h.ProductID,
		WarehouseID:      h.WarehouseID,
		ProductName:      h.ProductName,
		StockLevel:       h.StockLevel,
		ReorderThreshold: h.ReorderThreshold,
		Supplier:         h.Supplier,
		Category:         h.Category,
	}
	if day, err := time.Parse(domain.DateLayout, h.LastUpdated); err == nil {
		rec.LastUpdated = day
	}
	return rec
}

func recordFields(rec domain.StockRecord) []any {
	return []any{
		"product_id", rec.ProductID,
		"warehouse_id", rec.WarehouseID,
		"product_name", rec.ProductName,
		"stock_level", rec.StockLevel,
		"reorder_threshold", rec.ReorderThreshold,
		"supplier", rec.Supplier,
		"category", rec.Category,
		"last_updated", rec.LastUpdated.Format(domain.DateLayout),
	}
}

// stockKey length-prefixes the product ID so IDs containing ':' cannot make
// two pairs share a key.
func stockKey(productID, warehouseID string) string {
	return fmt.Sprintf("%s%d:%s:%s", stockKeyPrefix, len(productID), productID, warehouseID)
}

func warehouseIndexKey(warehouseID string) string {
	return warehouseIndexPrefix + warehouseID
}

// RedisStockAdapter keeps one hash per (product, warehouse) record. A set
// indexes every record key and a per-warehouse sorted set (all scores zero)
// orders product IDs lexicographically for cursor pagination.
type RedisStockAdapter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStockAdapter(client *redis.Client) *RedisStockAdapter {
	return &RedisStockAdapter{client: client, now: time.Now}
}

func (r *RedisStockAdapter) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	cmd := r.client.HGetAll(ctx, stockKey(productID, warehouseID))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var h stockHash
	if err := cmd.Scan(&h); err != nil {
		return nil, fmt.Errorf("scan stock record: %w", err)
	}
	rec := h.record()
	return &rec, nil
}

func (r *RedisStockAdapter) Put(ctx context.Context, rec domain.StockRecord) error {
	key := stockKey(rec.ProductID, rec.WarehouseID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, recordFields(rec)...)
		pipe.SAdd(ctx, stockIndexKey, key)
		pipe.ZAdd(ctx, warehouseIndexKey(rec.WarehouseID), redis.Z{Score: 0, Member: rec.ProductID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("put stock record: %w", err)
	}
	return nil
}

func (r *RedisStockAdapter) Create(ctx context.Context, rec domain.StockRecord) error {
	keys := []string{stockKey(rec.ProductID, rec.WarehouseID), stockIndexKey, warehouseIndexKey(rec.WarehouseID)}
	args := append([]any{rec.ProductID}, recordFields(rec)...)

	created, err := createStockScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("create stock record: %w", err)
	}
	if created == 0 {
		return port.ErrAlreadyExists
	}
	return nil
}

func (r *RedisStockAdapter) Adjust(ctx context.Context, productID, warehouseID string, delta int) error {
	key := stockKey(productID, warehouseID)
	today := domain.Day(r.now()).Format(domain.DateLayout)

	err := adjustStockScript.Run(ctx, r.client, []string{key}, delta, today).Err()
	if errors.Is(err, redis.Nil) {
		return port.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("adjust stock record: %w", err)
	}
	return nil
}

func (r *RedisStockAdapter) Update(ctx context.Context, productID, warehouseID string, update domain.StockUpdate) error {
	fields := stockUpdateFields(update)
	if len(fields) == 0 {
		return nil
	}
	fields = append(fields, "last_updated", domain.Day(r.now()).Format(domain.DateLayout))

	updated, err := updateStockScript.Run(ctx, r.client, []string{stockKey(productID, warehouseID)}, fields...).Int()
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if updated == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *RedisStockAdapter) Delete(ctx context.Context, productID, warehouseID string) error {
	keys := []string{stockKey(productID, warehouseID), stockIndexKey, warehouseIndexKey(warehouseID)}

	deleted, err := deleteStockScript.Run(ctx, r.client, keys, productID).Int()
	if err != nil {
		return fmt.Errorf("delete stock record: %w", err)
	}
	if deleted == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *RedisStockAdapter) List(ctx context.Context) ([]domain.StockRecord, error) {
	keys, err := r.client.SMembers(ctx, stockIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list stock index: %w", err)
	}
	records, err := r.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].WarehouseID < records[j].WarehouseID
	})
	return records, nil
}

func (r *RedisStockAdapter) ListByWarehouse(ctx context.Context, warehouseID string, limit int, cursor string) ([]domain.StockRecord, string, error) {
	start := "-"
	if cursor != "" {
		start = "(" + cursor
	}

	products, err := r.client.ZRangeByLex(ctx, warehouseIndexKey(warehouseID), &redis.ZRangeBy{
		Min:   start,
		Max:   "+",
		Count: int64(limit + 1),
	}).Result()
	if err != nil {
		return nil, "", fmt.Errorf("list warehouse index: %w", err)
	}

	next := ""
	if len(products) > limit {
		products = products[:limit]
		next = products[limit-1]
	}

	keys := make([]string, len(products))
	for i, p := range products {
		keys[i] = stockKey(p, warehouseID)
	}
	records, err := r.fetch(ctx, keys)
	if err != nil {
		return nil, "", err
	}
	return records, next, nil
}

func (r *RedisStockAdapter) fetch(ctx context.Context, keys []string) ([]domain.StockRecord, error) {
	if len(keys) == 0 {
		return []domain.StockRecord{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch stock records: %w", err)
	}

	records := make([]domain.StockRecord, 0, len(keys))
	for _, cmd := range cmds {
		if len(cmd.Val()) == 0 {
			continue
		}
		var h stockHash
		if err := cmd.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, h.record())
	}
	return records, nil
}
