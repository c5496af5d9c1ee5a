// Package provider declares the external collaborators the settlement engine
// depends on: gold pricing, user notification and evidence storage.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProviderUnavailable is returned when a collaborator cannot answer.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Prices is the quote a user gets at call time.
type Prices struct {
	Jurisdiction string          `json:"jurisdiction"`
	BuyPerGram   decimal.Decimal `json:"buy_per_gram"`
	SellPerGram  decimal.Decimal `json:"sell_per_gram"`
	BuyFeePct    decimal.Decimal `json:"buy_fee_pct"`
	SellFeePct   decimal.Decimal `json:"sell_fee_pct"`
	QuotedAt     time.Time       `json:"quoted_at"`
}

// PriceOracle supplies per-user gold prices and the investment plan catalog.
type PriceOracle interface {
	CurrentPrices(ctx context.Context, userID uuid.UUID) (Prices, error)
	PlanCatalog(ctx context.Context) ([]investment.Plan, error)
}

type jurisdictionKey struct{}

// WithJurisdiction returns a context carrying the caller's jurisdiction code.
func WithJurisdiction(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, jurisdictionKey{}, code)
}

// JurisdictionFrom returns the jurisdiction code stored by WithJurisdiction.
func JurisdictionFrom(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(jurisdictionKey{}).(string)
	return code, ok && code != ""
}
