package port

import "context"

type CacheRepository interface {
	// SetStock writes the absolute stock level for a product to the mirror
	SetStock(ctx context.Context, name string, quantity int) error

	// DecrementStock decreases mirrored stock, returns false if the mirror would go negative
	DecrementStock(ctx context.Context, name string, quantity int) (bool, error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
