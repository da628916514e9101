package port

import (
	"context"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the key so the request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}

// ReconciliationLog keeps partially applied transfers for manual replay.
type ReconciliationLog interface {
	Record(ctx context.Context, entry domain.ReconciliationEntry) error
	Entries(ctx context.Context) ([]domain.ReconciliationEntry, error)
}
