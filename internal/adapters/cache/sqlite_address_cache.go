package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/ports"
)

// SQLite backed address cache. Negative results are stored with resolved=0
// and null coordinates. Writes are always durable; the soft/hard mode only
// distinguishes the in-memory file store.
type SqliteAddressCache struct {
	DB *sql.DB
}

func NewSqliteAddressCache(db *sql.DB) *SqliteAddressCache {
	return &SqliteAddressCache{DB: db}
}

// InitSqliteSchema creates the address cache table.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS address_cache (
        address TEXT PRIMARY KEY,
        lon REAL,
        lat REAL,
        resolved INTEGER NOT NULL
    );
	`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init schema: create address_cache: %w", err)
	}
	return nil
}

func (s *SqliteAddressCache) Get(ctx context.Context, address string) (*domain.Coordinates, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("address cache: db is nil")
	}

	q := `
	SELECT lon, lat, resolved
    FROM address_cache
    WHERE address = ?;
	`

	var lon, lat sql.NullFloat64
	var resolved int
	err := s.DB.QueryRowContext(ctx, q, address).Scan(&lon, &lat, &resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get address cache: query: %w", err)
	}

	if resolved == 0 || !lon.Valid || !lat.Valid {
		return nil, true, nil
	}
	return &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}, true, nil
}

func (s *SqliteAddressCache) Update(ctx context.Context, address string, geocode *domain.Coordinates, _ ports.CacheMode) error {
	if s.DB == nil {
		return errors.New("address cache: db is nil")
	}
	if address == "" {
		return errors.New("insert address cache: empty address key")
	}

	q := `
	INSERT OR REPLACE INTO address_cache (address, lon, lat, resolved)
    VALUES (?, ?, ?, ?);
	`

	var lon, lat sql.NullFloat64
	resolved := 0
	if geocode != nil {
		lon = sql.NullFloat64{Float64: geocode.Lon, Valid: true}
		lat = sql.NullFloat64{Float64: geocode.Lat, Valid: true}
		resolved = 1
	}

	if _, err := s.DB.ExecContext(ctx, q, address, lon, lat, resolved); err != nil {
		return fmt.Errorf("insert address cache %q: %w", address, err)
	}
	return nil
}

func (s *SqliteAddressCache) Reset(ctx context.Context, mode ports.CacheMode) error {
	if s.DB == nil {
		return errors.New("address cache: db is nil")
	}
	if mode != ports.CacheHard {
		// No separate in-memory layer to clear.
		return nil
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM address_cache;`); err != nil {
		return fmt.Errorf("reset address cache: %w", err)
	}
	return nil
}
