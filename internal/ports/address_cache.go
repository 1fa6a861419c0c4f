package ports

import (
	"context"

	"nemt-route-service/internal/domain"
)

// CacheMode controls whether a cache mutation is persisted.
type CacheMode string

const (
	// CacheSoft mutates in-memory state only. Backends without a separate
	// in-memory layer treat soft writes as durable.
	CacheSoft CacheMode = "soft"
	// CacheHard also persists to the backing store.
	CacheHard CacheMode = "hard"
)

// AddressCache maps a free-text address to resolved coordinates. A present
// entry with nil coordinates is a cached negative result and must be
// returned without retrying the external geocoder.
type AddressCache interface {
	// Get returns (geocode, present, err). Present with nil geocode means a
	// cached negative.
	Get(ctx context.Context, address string) (*domain.Coordinates, bool, error)
	// Update stores or replaces one entry; nil geocode records a negative.
	Update(ctx context.Context, address string, geocode *domain.Coordinates, mode CacheMode) error
	// Reset clears in-memory state and, in hard mode, the backing store.
	Reset(ctx context.Context, mode CacheMode) error
}
