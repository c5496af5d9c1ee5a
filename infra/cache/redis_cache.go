package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/cache"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/redis/go-redis/v9"
)

// RedisPriceCache implements cache.PriceCache using Redis, so every API
// replica quotes the same price within a TTL window.
type RedisPriceCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisPriceCache creates a new RedisPriceCache over a shared client.
func NewRedisPriceCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisPriceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPriceCache{client: client, prefix: prefix + "prices:", logger: logger}
}

func (r *RedisPriceCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisPriceCache) Get(ctx context.Context, key string) (*provider.Prices, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var prices provider.Prices
	if err := json.Unmarshal(val, &prices); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key)
	return &prices, nil
}

func (r *RedisPriceCache) Set(ctx context.Context, key string, prices *provider.Prices, ttl time.Duration) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "ttl", ttl)
	return nil
}

func (r *RedisPriceCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	return nil
}

var _ cache.PriceCache = (*RedisPriceCache)(nil)
