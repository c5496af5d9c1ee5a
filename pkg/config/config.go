package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url     string `envconfig:"URL"`
	Driver  string `envconfig:"DRIVER" default:"postgres"`
	Migrate bool   `envconfig:"MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Strategy string `envconfig:"STRATEGY" default:"jwt"`
	Jwt      *Jwt   `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"gold:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"TOPIC" default:"gold.settlement"`
	GroupID string   `envconfig:"GROUP_ID" default:"gold-settlement"`
}

// EventBus selects where settlement events and user notifications go.
type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"` // memory | redis | kafka
	Stream string `envconfig:"STREAM" default:"settlement:events"`
	Group  string `envconfig:"GROUP" default:"gold-settlement"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Ledger holds the platform rules the settlement engine enforces.
type Ledger struct {
	GoldLockDays      int             `envconfig:"GOLD_LOCK_DAYS" default:"30"`
	MinSellGrams      decimal.Decimal `envconfig:"MIN_SELL_GRAMS" default:"1"`
	MinWithdrawal     decimal.Decimal `envconfig:"MIN_WITHDRAWAL" default:"100"`
	MaxRetries        int             `envconfig:"MAX_RETRIES" default:"5"`
	RetryBaseInterval time.Duration   `envconfig:"RETRY_BASE_INTERVAL" default:"20ms"`
	RetryMaxInterval  time.Duration   `envconfig:"RETRY_MAX_INTERVAL" default:"500ms"`
}

// Pricing holds the configured gold prices. Overrides are keyed by
// jurisdiction code, e.g. PRICING_BUY_OVERRIDES=AE:250.10,GB:61.20.
type Pricing struct {
	Jurisdiction  string                     `envconfig:"DEFAULT_JURISDICTION" default:"US"`
	BuyPerGram    decimal.Decimal            `envconfig:"BUY_PER_GRAM" default:"65.00"`
	SellPerGram   decimal.Decimal            `envconfig:"SELL_PER_GRAM" default:"63.50"`
	BuyFeePct     decimal.Decimal            `envconfig:"BUY_FEE_PCT" default:"0"`
	SellFeePct    decimal.Decimal            `envconfig:"SELL_FEE_PCT" default:"0"`
	BuyOverrides  map[string]decimal.Decimal `envconfig:"BUY_OVERRIDES"`
	SellOverrides map[string]decimal.Decimal `envconfig:"SELL_OVERRIDES"`
	PlansFile     string                     `envconfig:"PLANS_FILE"`
	CacheDriver   string                     `envconfig:"CACHE_DRIVER" default:"memory"` // memory | redis | none
	CacheTTL      time.Duration              `envconfig:"CACHE_TTL" default:"30s"`
}

// Evidence configures where uploaded top-up screenshots are kept.
type Evidence struct {
	Driver   string        `envconfig:"DRIVER" default:"memory"` // memory | redis
	MaxBytes int           `envconfig:"MAX_BYTES" default:"5242880"`
	TTL      time.Duration `envconfig:"TTL" default:"720h"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[gold]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Ledger    *Ledger    `envconfig:"LEDGER"`
	Pricing   *Pricing   `envconfig:"PRICING"`
	Evidence  *Evidence  `envconfig:"EVIDENCE"`
}
