package ports

import "context"

// RouteShaper fetches a road-following shape for ordered [lon, lat]
// waypoints, returned as an encoded polyline. A failure here degrades the
// display geometry to straight segments; it never fails a translation.
type RouteShaper interface {
	FetchShape(ctx context.Context, waypoints [][]float64) (string, error)
}
