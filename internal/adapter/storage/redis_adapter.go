package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	reconciliationKey    = "reconciliation:transfers"
)

// RedisAdapter holds the idempotency keys and the reconciliation log.
type RedisAdapter struct {
	client         *redis.Client
	idempotencyTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, idempotencyTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, idempotencyTTL: idempotencyTTL}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func (r *RedisAdapter) Record(ctx context.Context, entry domain.ReconciliationEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal reconciliation entry: %w", err)
	}
	return r.client.RPush(ctx, reconciliationKey, payload).Err()
}

func (r *RedisAdapter) Entries(ctx context.Context) ([]domain.ReconciliationEntry, error) {
	raw, err := r.client.LRange(ctx, reconciliationKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ReconciliationEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.ReconciliationEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal reconciliation entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
