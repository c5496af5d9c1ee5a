package gold

import (
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumedLot records how many grams a sale took from one lot.
type ConsumedLot struct {
	LotID                  uuid.UUID       `json:"lot_id"`
	GramsTaken             decimal.Decimal `json:"grams_taken"`
	PricePerGramAtPurchase decimal.Decimal `json:"price_per_gram_at_purchase"`
}

// Sale is one sell action with its full FIFO attribution.
//
// Profit = Σ (PricePerGramAtSale − lot.PricePerGramAtPurchase) × GramsTaken
// over ConsumedLots, using the gross sale price. TotalProceeds is what the
// user is credited, net of the sell fee.
type Sale struct {
	ID                 uuid.UUID       `json:"id"`
	OwnerID            uuid.UUID       `json:"owner_id"`
	GramsSold          decimal.Decimal `json:"grams_sold"`
	PricePerGramAtSale decimal.Decimal `json:"price_per_gram_at_sale"`
	FeePct             decimal.Decimal `json:"fee_pct"`
	GrossProceeds      decimal.Decimal `json:"gross_proceeds"`
	TotalProceeds      decimal.Decimal `json:"total_proceeds"`
	Profit             decimal.Decimal `json:"profit"`
	ConsumedLots       []ConsumedLot   `json:"consumed_lots"`
	SoldAt             time.Time       `json:"sold_at"`
}

// SaleProceeds is grams × price × (1 − feePct/100), rounded down to the money scale.
func SaleProceeds(grams, pricePerGram, feePct decimal.Decimal) (gross, net decimal.Decimal) {
	g := grams.Mul(pricePerGram)
	return common.CreditAmount(g), common.CreditAmount(g.Sub(g.Mul(common.Percent(feePct))))
}

// SellRequest describes a sale to allocate.
type SellRequest struct {
	OwnerID      uuid.UUID
	Grams        decimal.Decimal
	PricePerGram decimal.Decimal
	FeePct       decimal.Decimal
	MinGrams     decimal.Decimal
	AsOf         time.Time
}

func (r SellRequest) validate() error {
	if r.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if !r.Grams.IsPositive() {
		return fmt.Errorf("%w: grams must be positive", common.ErrValidation)
	}
	if !r.Grams.Equal(r.Grams.Round(common.GramScale)) {
		return fmt.Errorf("%w: grams support at most %d decimal places", common.ErrValidation, common.GramScale)
	}
	if !r.PricePerGram.IsPositive() {
		return fmt.Errorf("%w: price per gram must be positive", common.ErrValidation)
	}
	if r.FeePct.IsNegative() || r.FeePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: fee percentage must be between 0 and 100", common.ErrValidation)
	}
	if r.Grams.LessThan(r.MinGrams) {
		return fmt.Errorf("%w: minimum sale is %s g", common.ErrBelowMinimum, r.MinGrams.String())
	}
	return nil
}

// Allocate consumes r.Grams from the mature lots in lots, oldest first, and
// returns the resulting sale. Lots are decremented in place only when the
// whole quantity can be allocated; on error no lot is modified. The returned
// slice holds exactly the lots that changed.
func Allocate(lots []*Lot, r SellRequest) (*Sale, []*Lot, error) {
	if err := r.validate(); err != nil {
		return nil, nil, err
	}

	mature := make([]*Lot, 0, len(lots))
	for _, l := range lots {
		if l.OwnerID != r.OwnerID || !l.IsMature(r.AsOf) || l.IsExhausted() {
			continue
		}
		mature = append(mature, l)
	}
	available := MatureGrams(mature, r.AsOf)
	if r.Grams.GreaterThan(available) {
		return nil, nil, fmt.Errorf("%w: requested %s g, mature %s g",
			common.ErrInsufficientMatureGold, r.Grams.String(), available.String())
	}
	SortFIFO(mature)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, nil, err
	}
	sale := &Sale{
		ID:                 id,
		OwnerID:            r.OwnerID,
		GramsSold:          r.Grams,
		PricePerGramAtSale: r.PricePerGram,
		FeePct:             r.FeePct,
		Profit:             decimal.Zero,
		SoldAt:             r.AsOf.UTC(),
	}
	sale.GrossProceeds, sale.TotalProceeds = SaleProceeds(r.Grams, r.PricePerGram, r.FeePct)

	remaining := r.Grams
	touched := make([]*Lot, 0, len(mature))
	for _, l := range mature {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, l.GramsRemaining)
		l.GramsRemaining = l.GramsRemaining.Sub(take)
		remaining = remaining.Sub(take)
		sale.Profit = sale.Profit.Add(r.PricePerGram.Sub(l.PricePerGramAtPurchase).Mul(take))
		sale.ConsumedLots = append(sale.ConsumedLots, ConsumedLot{
			LotID:                  l.ID,
			GramsTaken:             take,
			PricePerGramAtPurchase: l.PricePerGramAtPurchase,
		})
		touched = append(touched, l)
	}
	return sale, touched, nil
}
