package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/ports"
)

// FileAddressCache is the primary address cache: one JSON object mapping
// address -> [lon, lat] or null (a cached negative). Hard writes rewrite the
// whole file; the last writer wins. Address keys are expected to be
// consistent (e.g., already normalized) by the caller.
type FileAddressCache struct {
	path    string
	mu      sync.RWMutex
	entries map[string][]float64
}

// NewFileAddressCache loads the store at path, creating an empty one
// (and its parent directory) when missing.
func NewFileAddressCache(path string) (*FileAddressCache, error) {
	c := &FileAddressCache{
		path:    path,
		entries: map[string][]float64{},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("address cache: create store dir: %w", err)
		}
		if err := c.save(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("address cache: read %q: %w", path, err)
	}

	if err := json.Unmarshal(raw, &c.entries); err != nil {
		return nil, fmt.Errorf("address cache: parse %q: %w", path, err)
	}
	if c.entries == nil {
		c.entries = map[string][]float64{}
	}

	return c, nil
}

func (c *FileAddressCache) Get(_ context.Context, address string) (*domain.Coordinates, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[address]
	if !ok {
		return nil, false, nil
	}
	if len(entry) != 2 {
		// Cached negative.
		return nil, true, nil
	}
	return &domain.Coordinates{Lon: entry[0], Lat: entry[1]}, true, nil
}

func (c *FileAddressCache) Update(_ context.Context, address string, geocode *domain.Coordinates, mode ports.CacheMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if geocode == nil {
		c.entries[address] = nil
	} else {
		c.entries[address] = geocode.CoordsToList()
	}

	if mode == ports.CacheHard {
		return c.save()
	}
	return nil
}

func (c *FileAddressCache) Reset(_ context.Context, mode ports.CacheMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string][]float64{}
	if mode == ports.CacheHard {
		return c.save()
	}
	return nil
}

// save rewrites the whole store. Write to a temp file then rename so a
// crashed write never truncates the store.
func (c *FileAddressCache) save() error {
	raw, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("address cache: marshal store: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("address cache: write temp store: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("address cache: replace store: %w", err)
	}
	return nil
}
