package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

// SQLAddressCache is the Postgres-backed address cache for multi-session
// deployments, where hard writes must be serialized by the database rather
// than last-writer-wins file rewrites. Schema lives in migrations/.
type SQLAddressCache struct {
	DB *sql.DB
}

func NewSQLAddressCache(db *sql.DB) *SQLAddressCache {
	return &SQLAddressCache{DB: db}
}

func (s *SQLAddressCache) Get(ctx context.Context, address string) (_ *domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "address.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("address cache: db is nil")
	}

	q := `
	SELECT lon, lat, resolved
    FROM address_cache
    WHERE address = $1;
	`

	var lon, lat sql.NullFloat64
	var resolved bool
	err = s.DB.QueryRowContext(ctx, q, address).Scan(&lon, &lat, &resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get address cache: query: %w", err)
	}

	if !resolved || !lon.Valid || !lat.Valid {
		return nil, true, nil
	}
	return &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}, true, nil
}

func (s *SQLAddressCache) Update(ctx context.Context, address string, geocode *domain.Coordinates, _ ports.CacheMode) error {
	if s.DB == nil {
		return errors.New("address cache: db is nil")
	}
	if address == "" {
		return errors.New("insert address cache: empty address key")
	}

	q := `
	INSERT INTO address_cache (address, lon, lat, resolved)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		resolved = EXCLUDED.resolved;
	`

	var lon, lat sql.NullFloat64
	resolved := false
	if geocode != nil {
		lon = sql.NullFloat64{Float64: geocode.Lon, Valid: true}
		lat = sql.NullFloat64{Float64: geocode.Lat, Valid: true}
		resolved = true
	}

	if _, err := s.DB.ExecContext(ctx, q, address, lon, lat, resolved); err != nil {
		return fmt.Errorf("insert address cache %q: %w", address, err)
	}
	return nil
}

func (s *SQLAddressCache) Reset(ctx context.Context, mode ports.CacheMode) error {
	if s.DB == nil {
		return errors.New("address cache: db is nil")
	}
	if mode != ports.CacheHard {
		return nil
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM address_cache;`); err != nil {
		return fmt.Errorf("reset address cache: %w", err)
	}
	return nil
}
