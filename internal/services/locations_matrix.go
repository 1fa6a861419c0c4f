package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/ports"
)

// LocationsMatrix is a pairwise road distance/duration table over one
// batch's de-duplicated addresses, fetched in a single matrix call.
// Addresses that failed to geocode are absent from the index; accessors
// report absence instead of failing.
type LocationsMatrix struct {
	index  map[string]int
	tables *ports.MatrixResult
}

// BuildLocationsMatrix geocodes the unique addresses and fetches both
// tables in one call. Unresolvable addresses are skipped, not fatal; the
// external call is skipped entirely when fewer than two addresses resolve.
func BuildLocationsMatrix(ctx context.Context, geocoder ports.Geocoder, api ports.MatrixAPI, addresses []string, useCache bool) (*LocationsMatrix, error) {
	m := &LocationsMatrix{index: map[string]int{}}

	var coords []domain.Coordinates
	for _, addr := range lo.Uniq(addresses) {
		// Blank cells were already captured as record errors upstream.
		if strings.TrimSpace(addr) == "" {
			continue
		}
		geo, err := geocoder.Resolve(ctx, addr, useCache)
		if err != nil {
			return nil, fmt.Errorf("build locations matrix: %w", err)
		}
		if geo == nil {
			log.Printf("locations matrix: skipping unresolvable address %q", addr)
			continue
		}
		m.index[addr] = len(coords)
		coords = append(coords, *geo)
	}

	if len(coords) < 2 {
		return m, nil
	}

	tables, err := api.FetchMatrix(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("build locations matrix: %w", err)
	}
	m.tables = tables

	return m, nil
}

// Duration returns the road travel time in seconds from a to b.
func (m *LocationsMatrix) Duration(a, b string) (float64, bool) {
	return m.lookup(a, b, func(t *ports.MatrixResult) [][]*float64 { return t.DurationSeconds })
}

// Distance returns the road distance in meters from a to b.
func (m *LocationsMatrix) Distance(a, b string) (float64, bool) {
	return m.lookup(a, b, func(t *ports.MatrixResult) [][]*float64 { return t.DistanceMeters })
}

func (m *LocationsMatrix) lookup(a, b string, table func(*ports.MatrixResult) [][]*float64) (float64, bool) {
	if m.tables == nil {
		return 0, false
	}
	i, ok := m.index[a]
	if !ok {
		log.Printf("locations matrix: address %q not in matrix", a)
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		log.Printf("locations matrix: address %q not in matrix", b)
		return 0, false
	}
	v := table(m.tables)[i][j]
	if v == nil {
		log.Printf("locations matrix: no road entry between %q and %q", a, b)
		return 0, false
	}
	return *v, true
}
