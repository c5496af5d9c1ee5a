// Package gold models purchased gold lots, their lock period and the FIFO
// rule used to attribute a sale across lots.
package gold

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot is one completed purchase. Everything but GramsRemaining is fixed at
// purchase time; GramsRemaining only goes down, through Allocate.
type Lot struct {
	ID                     uuid.UUID       `json:"id"`
	OwnerID                uuid.UUID       `json:"owner_id"`
	GramsPurchased         decimal.Decimal `json:"grams_purchased"`
	GramsRemaining         decimal.Decimal `json:"grams_remaining"`
	PricePerGramAtPurchase decimal.Decimal `json:"price_per_gram_at_purchase"`
	FeePct                 decimal.Decimal `json:"fee_pct"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	LockDays               int             `json:"lock_days"`
	PurchasedAt            time.Time       `json:"purchased_at"`
	MaturesAt              time.Time       `json:"matures_at"`
}

// PurchaseCost is grams × price × (1 + feePct/100), rounded up to the money scale.
func PurchaseCost(grams, pricePerGram, feePct decimal.Decimal) decimal.Decimal {
	gross := grams.Mul(pricePerGram)
	return common.DebitAmount(gross.Add(gross.Mul(common.Percent(feePct))))
}

// NewLot validates a purchase and returns the lot it creates. The caller is
// responsible for debiting TotalCost in the same unit of work.
func NewLot(ownerID uuid.UUID, grams, pricePerGram, feePct decimal.Decimal, lockDays int, now time.Time) (*Lot, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if !grams.IsPositive() {
		return nil, fmt.Errorf("%w: grams must be positive", common.ErrValidation)
	}
	if !grams.Equal(grams.Round(common.GramScale)) {
		return nil, fmt.Errorf("%w: grams support at most %d decimal places", common.ErrValidation, common.GramScale)
	}
	if !pricePerGram.IsPositive() {
		return nil, fmt.Errorf("%w: price per gram must be positive", common.ErrValidation)
	}
	if feePct.IsNegative() {
		return nil, fmt.Errorf("%w: fee percentage must not be negative", common.ErrValidation)
	}
	if lockDays < 0 {
		return nil, fmt.Errorf("%w: lock days must not be negative", common.ErrValidation)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Lot{
		ID:                     id,
		OwnerID:                ownerID,
		GramsPurchased:         grams,
		GramsRemaining:         grams,
		PricePerGramAtPurchase: pricePerGram,
		FeePct:                 feePct,
		TotalCost:              PurchaseCost(grams, pricePerGram, feePct),
		LockDays:               lockDays,
		PurchasedAt:            now,
		MaturesAt:              now.AddDate(0, 0, lockDays),
	}, nil
}

// IsMature reports whether the lot can be sold at asOf.
func (l *Lot) IsMature(asOf time.Time) bool {
	return !asOf.Before(l.MaturesAt)
}

// IsExhausted reports whether every gram of the lot has been sold.
func (l *Lot) IsExhausted() bool {
	return !l.GramsRemaining.IsPositive()
}

// SortFIFO orders lots oldest first, ties broken by id.
func SortFIFO(lots []*Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].PurchasedAt.Equal(lots[j].PurchasedAt) {
			return lots[i].PurchasedAt.Before(lots[j].PurchasedAt)
		}
		return bytes.Compare(lots[i].ID[:], lots[j].ID[:]) < 0
	})
}

// MatureGrams sums GramsRemaining over lots mature at asOf.
func MatureGrams(lots []*Lot, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.IsMature(asOf) {
			total = total.Add(l.GramsRemaining)
		}
	}
	return total
}

// Holdings summarises a user's gold at a point in time. Locked grams count
// toward Total but cannot be sold.
type Holdings struct {
	Total  decimal.Decimal `json:"total_grams"`
	Mature decimal.Decimal `json:"mature_grams"`
	Locked decimal.Decimal `json:"locked_grams"`
	Lots   []*Lot          `json:"lots"`
}

// Summarize builds Holdings from the user's non-exhausted lots.
func Summarize(lots []*Lot, asOf time.Time) Holdings {
	h := Holdings{Total: decimal.Zero, Mature: decimal.Zero, Locked: decimal.Zero, Lots: lots}
	for _, l := range lots {
		h.Total = h.Total.Add(l.GramsRemaining)
		if l.IsMature(asOf) {
			h.Mature = h.Mature.Add(l.GramsRemaining)
		} else {
			h.Locked = h.Locked.Add(l.GramsRemaining)
		}
	}
	return h
}
