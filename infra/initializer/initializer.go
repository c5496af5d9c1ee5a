// Package initializer builds application dependencies from configuration.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra"
	infra_cache "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/cache"
	infra_eventbus "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/eventbus"
	infra_provider "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/provider"
	infra_repository "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/repository"
	planfixtures "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/internal/fixtures/plans"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/app"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies initializes all the application dependencies.
// The returned Deps.Close releases every connection opened here.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, err error) {
	logger := SetupLogger(cfg.Log)
	deps = &app.Deps{Logger: logger}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	deps.Close = closeAll
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		closers = append(closers, sqlDB.Close)
	}
	deps.Uow = infra_repository.NewUoW(db)

	var rdb *redis.Client
	if needsRedis(cfg) {
		rdb, err = NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		closers = append(closers, rdb.Close)
	}

	bus, closeBus, err := initEventBus(cfg, rdb, logger)
	if err != nil {
		return nil, err
	}
	if closeBus != nil {
		closers = append(closers, closeBus)
	}
	deps.EventBus = bus
	deps.Notifier = infra_provider.NewBusNotifier(bus)

	deps.Prices, err = initPriceOracle(cfg.Pricing, rdb, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Evidence.Driver {
	case "redis":
		deps.Evidence = infra_provider.NewRedisEvidenceStore(rdb, cfg.Redis.KeyPrefix, cfg.Evidence.TTL, cfg.Evidence.MaxBytes)
	default:
		deps.Evidence = infra_provider.NewMemoryEvidenceStore(cfg.Evidence.MaxBytes)
	}

	logger.Info("Dependencies initialized",
		"db_driver", cfg.DB.Driver,
		"event_bus", cfg.EventBus.Driver,
		"price_cache", cfg.Pricing.CacheDriver,
		"evidence", cfg.Evidence.Driver,
	)
	return deps, nil
}

func needsRedis(cfg *config.App) bool {
	return cfg.EventBus.Driver == "redis" ||
		cfg.Pricing.CacheDriver == "redis" ||
		cfg.Evidence.Driver == "redis"
}

// NewRedisClient connects to the configured Redis and pings it.
func NewRedisClient(cfg *config.Redis) (*redis.Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("redis: url is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}
	return client, nil
}

func initEventBus(cfg *config.App, rdb *redis.Client, logger *slog.Logger) (eventbus.Bus, func() error, error) {
	switch cfg.EventBus.Driver {
	case "", "memory":
		return infra_eventbus.NewWithMemory(logger), nil, nil
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("redis event bus requires a redis client")
		}
		bus, err := infra_eventbus.NewWithRedis(rdb, cfg.EventBus.Stream, cfg.EventBus.Group, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		return bus, bus.Close, nil
	case "kafka":
		bus, err := infra_eventbus.NewWithKafka(&infra_eventbus.KafkaEventBusConfig{
			Brokers:     cfg.Kafka.Brokers,
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: cfg.Kafka.Topic,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		return bus, bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported event bus driver %q", cfg.EventBus.Driver)
	}
}

func initPriceOracle(cfg *config.Pricing, rdb *redis.Client, rcfg *config.Redis, logger *slog.Logger) (provider.PriceOracle, error) {
	plans, err := planfixtures.LoadPlansCSV(cfg.PlansFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load investment plans: %w", err)
	}
	oracle, err := infra_provider.NewStaticPriceOracle(cfg, plans)
	if err != nil {
		return nil, err
	}
	logger.Info("Price oracle ready", "jurisdiction", cfg.Jurisdiction, "plans", len(plans))

	switch cfg.CacheDriver {
	case "none", "":
		return oracle, nil
	case "redis":
		return infra_provider.NewCachedPriceOracle(oracle, infra_cache.NewRedisPriceCache(rdb, rcfg.KeyPrefix, logger), cfg.CacheTTL, logger), nil
	case "memory":
		return infra_provider.NewCachedPriceOracle(oracle, infra_cache.NewMemoryCache(), cfg.CacheTTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported price cache driver %q", cfg.CacheDriver)
	}
}
