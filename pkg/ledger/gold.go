package ledger

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoldLotLedger records purchases as time-locked lots and settles sales
// against matured lots oldest first.
type GoldLotLedger struct {
	uow      repository.UnitOfWork
	balances *BalanceStore
}

// NewGoldLotLedger creates a GoldLotLedger.
func NewGoldLotLedger(uow repository.UnitOfWork, balances *BalanceStore) *GoldLotLedger {
	return &GoldLotLedger{uow: uow, balances: balances}
}

// PurchaseOrder describes a purchase.
type PurchaseOrder struct {
	UserID       uuid.UUID
	Grams        decimal.Decimal
	PricePerGram decimal.Decimal
	FeePct       decimal.Decimal
	LockDays     int
	Now          time.Time
}

// Purchase debits the lot's total cost from spendable and records the lot.
func (l *GoldLotLedger) Purchase(ctx context.Context, tx repository.UnitOfWork, o PurchaseOrder) (*gold.Lot, *wallet.Account, error) {
	lot, err := gold.NewLot(o.UserID, o.Grams, o.PricePerGram, o.FeePct, o.LockDays, o.Now)
	if err != nil {
		return nil, nil, err
	}
	acct, err := l.balances.AdjustIn(ctx, tx, o.UserID, lot.TotalCost.Neg(), decimal.Zero)
	if err != nil {
		return nil, nil, err
	}
	lots, err := tx.LotRepository()
	if err != nil {
		return nil, nil, err
	}
	if err := lots.Create(ctx, lot); err != nil {
		return nil, nil, err
	}
	return lot, acct, nil
}

// Sell consumes grams from the user's mature lots, credits the net proceeds
// to withdrawable and records the sale with its consumption trail.
func (l *GoldLotLedger) Sell(ctx context.Context, tx repository.UnitOfWork, r gold.SellRequest) (*gold.Sale, *wallet.Account, error) {
	acct, err := l.balances.Lock(ctx, tx, r.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	lots, err := tx.LotRepository()
	if err != nil {
		return nil, nil, err
	}
	mature, err := lots.ListMature(ctx, r.OwnerID, r.AsOf)
	if err != nil {
		return nil, nil, err
	}
	sale, touched, err := gold.Allocate(mature, r)
	if err != nil {
		return nil, nil, err
	}
	if err := lots.UpdateRemaining(ctx, touched); err != nil {
		return nil, nil, err
	}
	sales, err := tx.SaleRepository()
	if err != nil {
		return nil, nil, err
	}
	if err := sales.Create(ctx, sale); err != nil {
		return nil, nil, err
	}
	if err := l.balances.AdjustLocked(ctx, tx, acct, decimal.Zero, sale.TotalProceeds); err != nil {
		return nil, nil, err
	}
	return sale, acct, nil
}

// MatureGrams sums the remaining grams of the user's lots mature at asOf.
func (l *GoldLotLedger) MatureGrams(ctx context.Context, userID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	lots, err := l.uow.LotRepository()
	if err != nil {
		return decimal.Zero, err
	}
	mature, err := lots.ListMature(ctx, userID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return gold.MatureGrams(mature, asOf), nil
}

// Holdings returns the user's open lots split into mature and locked grams.
func (l *GoldLotLedger) Holdings(ctx context.Context, userID uuid.UUID, asOf time.Time) (gold.Holdings, error) {
	lots, err := l.uow.LotRepository()
	if err != nil {
		return gold.Holdings{}, err
	}
	open, err := lots.ListOpen(ctx, userID)
	if err != nil {
		return gold.Holdings{}, err
	}
	return gold.Summarize(open, asOf), nil
}

// Sales lists the user's sales, newest first.
func (l *GoldLotLedger) Sales(ctx context.Context, userID uuid.UUID) ([]*gold.Sale, error) {
	sales, err := l.uow.SaleRepository()
	if err != nil {
		return nil, err
	}
	return sales.ListByOwner(ctx, userID)
}
