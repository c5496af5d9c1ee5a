package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath, searching the
// working directory and its parents, then decodes the environment. A
// missing file is not an error; the process environment still applies.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	if len(envFilePath) == 0 {
		envFilePath = []string{".env"}
	}
	for _, name := range envFilePath {
		path, err := findEnvFile(name)
		if err != nil {
			logger.Debug("Environment file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Error("Failed to load environment file", "path", path, "error", err)
			continue
		}
		logger.Info("Environment loaded from file", "path", path)
		return loadFromEnv()
	}
	logger.Warn("No environment file found, using process environment")
	return loadFromEnv()
}

// findEnvFile walks up from the working directory looking for name.
func findEnvFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func loadFromEnv() (*App, error) {
	var cfg App
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	// Set default values if not set
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.Url),
		"auth_strategy", cfg.Auth.Strategy,
		"auth_jwt_secret", maskValue(cfg.Auth.Jwt.Secret),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"event_bus", cfg.EventBus.Driver,
		"redis", maskValue(cfg.Redis.URL),
		"gold_lock_days", cfg.Ledger.GoldLockDays,
		"min_withdrawal", cfg.Ledger.MinWithdrawal.String(),
		"max_retries", cfg.Ledger.MaxRetries,
		"price_cache", cfg.Pricing.CacheDriver,
		"price_cache_ttl", cfg.Pricing.CacheTTL,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
