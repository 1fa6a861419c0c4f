package ports

import (
	"context"

	"nemt-route-service/internal/domain"
)

// Geocoder resolves a free-text address to coordinates. A (nil, nil) return
// means the address could not be resolved; callers drop the record and
// continue, they never abort the batch on it.
type Geocoder interface {
	Resolve(ctx context.Context, address string, useCache bool) (*domain.Coordinates, error)
}
