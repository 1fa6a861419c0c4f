package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/ports"
)

const redisKeyPrefix = "addr:"

// RedisAddressCache shares one address cache between processes. Values are
// the same shape the file store persists: "[lon,lat]" or "null".
type RedisAddressCache struct {
	Client *redis.Client
}

func NewRedisAddressCache(client *redis.Client) *RedisAddressCache {
	return &RedisAddressCache{Client: client}
}

func (r *RedisAddressCache) Get(ctx context.Context, address string) (*domain.Coordinates, bool, error) {
	if r.Client == nil {
		return nil, false, errors.New("address cache: redis client is nil")
	}

	val, err := r.Client.Get(ctx, redisKeyPrefix+address).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get address cache: %w", err)
	}

	var entry []float64
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, false, fmt.Errorf("get address cache: parse entry %q: %w", address, err)
	}
	if len(entry) != 2 {
		return nil, true, nil
	}
	return &domain.Coordinates{Lon: entry[0], Lat: entry[1]}, true, nil
}

func (r *RedisAddressCache) Update(ctx context.Context, address string, geocode *domain.Coordinates, _ ports.CacheMode) error {
	if r.Client == nil {
		return errors.New("address cache: redis client is nil")
	}
	if address == "" {
		return errors.New("insert address cache: empty address key")
	}

	var entry []float64
	if geocode != nil {
		entry = geocode.CoordsToList()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("insert address cache %q: %w", address, err)
	}

	if err := r.Client.Set(ctx, redisKeyPrefix+address, raw, 0).Err(); err != nil {
		return fmt.Errorf("insert address cache %q: %w", address, err)
	}
	return nil
}

func (r *RedisAddressCache) Reset(ctx context.Context, mode ports.CacheMode) error {
	if r.Client == nil {
		return errors.New("address cache: redis client is nil")
	}
	if mode != ports.CacheHard {
		return nil
	}

	iter := r.Client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("reset address cache: delete %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("reset address cache: scan: %w", err)
	}
	return nil
}
