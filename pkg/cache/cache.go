// Package cache declares the quote cache sitting in front of the price oracle.
package cache

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
)

// PriceCache stores quotes by jurisdiction. Get returns nil, nil on a miss.
type PriceCache interface {
	Get(ctx context.Context, key string) (*provider.Prices, error)
	Set(ctx context.Context, key string, prices *provider.Prices, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
