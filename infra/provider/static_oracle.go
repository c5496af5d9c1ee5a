package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaticPriceOracle quotes the configured prices. The caller's
// jurisdiction, taken from the context, selects any per-jurisdiction
// override; everyone else gets the default.
type StaticPriceOracle struct {
	cfg   config.Pricing
	plans []investment.Plan
	now   func() time.Time
}

// NewStaticPriceOracle validates the configured prices.
func NewStaticPriceOracle(cfg *config.Pricing, plans []investment.Plan) (*StaticPriceOracle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pricing config is required")
	}
	if !cfg.BuyPerGram.IsPositive() || !cfg.SellPerGram.IsPositive() {
		return nil, fmt.Errorf("buy and sell prices must be positive")
	}
	for code, p := range cfg.BuyOverrides {
		if !p.IsPositive() {
			return nil, fmt.Errorf("buy override for %s must be positive", code)
		}
	}
	for code, p := range cfg.SellOverrides {
		if !p.IsPositive() {
			return nil, fmt.Errorf("sell override for %s must be positive", code)
		}
	}
	return &StaticPriceOracle{
		cfg:   *cfg,
		plans: plans,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (o *StaticPriceOracle) CurrentPrices(ctx context.Context, _ uuid.UUID) (provider.Prices, error) {
	code := o.cfg.Jurisdiction
	if j, ok := provider.JurisdictionFrom(ctx); ok {
		code = strings.ToUpper(j)
	}
	return provider.Prices{
		Jurisdiction: code,
		BuyPerGram:   pick(o.cfg.BuyOverrides, code, o.cfg.BuyPerGram),
		SellPerGram:  pick(o.cfg.SellOverrides, code, o.cfg.SellPerGram),
		BuyFeePct:    o.cfg.BuyFeePct,
		SellFeePct:   o.cfg.SellFeePct,
		QuotedAt:     o.now(),
	}, nil
}

func pick(overrides map[string]decimal.Decimal, code string, fallback decimal.Decimal) decimal.Decimal {
	if p, ok := overrides[code]; ok {
		return p
	}
	return fallback
}

func (o *StaticPriceOracle) PlanCatalog(context.Context) ([]investment.Plan, error) {
	out := make([]investment.Plan, len(o.plans))
	copy(out, o.plans)
	return out, nil
}

var _ provider.PriceOracle = (*StaticPriceOracle)(nil)
