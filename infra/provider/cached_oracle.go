package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/cache"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const defaultJurisdictionKey = "_default"

// CachedPriceOracle caches quotes per jurisdiction for a short TTL.
// Concurrent misses for the same jurisdiction share one upstream call.
type CachedPriceOracle struct {
	next     provider.PriceOracle
	cache    cache.PriceCache
	ttl      time.Duration
	inflight singleflight.Group
	logger   *slog.Logger
}

// NewCachedPriceOracle creates a new CachedPriceOracle.
func NewCachedPriceOracle(next provider.PriceOracle, c cache.PriceCache, ttl time.Duration, logger *slog.Logger) *CachedPriceOracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedPriceOracle{next: next, cache: c, ttl: ttl, logger: logger}
}

// CurrentPrices returns the cached quote for the caller's jurisdiction,
// fetching it from the next oracle on a miss. Quotes do not vary per user
// within a jurisdiction.
func (c *CachedPriceOracle) CurrentPrices(ctx context.Context, userID uuid.UUID) (provider.Prices, error) {
	key := defaultJurisdictionKey
	if j, ok := provider.JurisdictionFrom(ctx); ok {
		key = strings.ToUpper(j)
	}

	if p, err := c.cache.Get(ctx, key); err == nil && p != nil {
		c.logger.Debug("Cache hit for CurrentPrices", "key", key)
		return *p, nil
	} else if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	}

	v, err, _ := c.inflight.Do(key, func() (any, error) {
		p, err := c.next.CurrentPrices(ctx, userID)
		if err != nil {
			return provider.Prices{}, err
		}
		if err := c.cache.Set(ctx, key, &p, c.ttl); err != nil {
			c.logger.Error("Error setting cache for CurrentPrices", "key", key, "error", err)
		}
		return p, nil
	})
	if err != nil {
		return provider.Prices{}, err
	}
	return v.(provider.Prices), nil
}

func (c *CachedPriceOracle) PlanCatalog(ctx context.Context) ([]investment.Plan, error) {
	return c.next.PlanCatalog(ctx)
}

var _ provider.PriceOracle = (*CachedPriceOracle)(nil)
