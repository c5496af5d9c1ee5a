package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/ledger"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyGold buys grams at the user's current buy price. The cost, including
// the buy fee, comes out of spendable and the gold is locked for the
// configured number of days.
func (e *Engine) BuyGold(ctx context.Context, userID uuid.UUID, grams decimal.Decimal) (*Receipt[*gold.Lot], error) {
	logger := e.logger.With("op", "BuyGold", "userID", userID, "grams", grams.String())
	logger.Info("BuyGold started")

	prices, err := e.prices.CurrentPrices(ctx, userID)
	if err != nil {
		logger.Error("BuyGold failed: price lookup", "error", err)
		return nil, err
	}

	var receipt Receipt[*gold.Lot]
	err = e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		lot, acct, err := e.ledger.Gold.Purchase(ctx, tx, ledger.PurchaseOrder{
			UserID:       userID,
			Grams:        grams,
			PricePerGram: prices.BuyPerGram,
			FeePct:       prices.BuyFeePct,
			LockDays:     e.rules.GoldLockDays,
			Now:          e.now(),
		})
		if err != nil {
			return err
		}
		receipt = Receipt[*gold.Lot]{Record: lot, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("BuyGold failed", "error", err)
		return nil, err
	}

	lot := receipt.Record
	logger.Info("BuyGold successful", "lotID", lot.ID, "totalCost", lot.TotalCost.String())
	ev := settledEvent(events.EventTypeGoldPurchased, userID, lot.ID, lot.TotalCost, receipt.Balances)
	ev.Grams = lot.GramsPurchased
	e.settled(ctx, logger, ev, fmt.Sprintf(
		"You bought %s g of gold for %s. It can be sold from %s.",
		lot.GramsPurchased.String(), money(lot.TotalCost), lot.MaturesAt.Format(time.DateOnly)))
	return &receipt, nil
}

// SellGold sells grams from the user's matured lots, oldest first, at the
// user's current sell price. Net proceeds are credited to withdrawable.
func (e *Engine) SellGold(ctx context.Context, userID uuid.UUID, grams decimal.Decimal) (*Receipt[*gold.Sale], error) {
	logger := e.logger.With("op", "SellGold", "userID", userID, "grams", grams.String())
	logger.Info("SellGold started")

	prices, err := e.prices.CurrentPrices(ctx, userID)
	if err != nil {
		logger.Error("SellGold failed: price lookup", "error", err)
		return nil, err
	}

	var receipt Receipt[*gold.Sale]
	err = e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		sale, acct, err := e.ledger.Gold.Sell(ctx, tx, gold.SellRequest{
			OwnerID:      userID,
			Grams:        grams,
			PricePerGram: prices.SellPerGram,
			FeePct:       prices.SellFeePct,
			MinGrams:     e.rules.MinSellGrams,
			AsOf:         e.now(),
		})
		if err != nil {
			return err
		}
		receipt = Receipt[*gold.Sale]{Record: sale, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("SellGold failed", "error", err)
		return nil, err
	}

	sale := receipt.Record
	logger.Info("SellGold successful",
		"saleID", sale.ID,
		"proceeds", sale.TotalProceeds.String(),
		"profit", sale.Profit.String(),
		"lots", len(sale.ConsumedLots))
	ev := settledEvent(events.EventTypeGoldSold, userID, sale.ID, sale.TotalProceeds, receipt.Balances)
	ev.Grams = sale.GramsSold
	e.settled(ctx, logger, ev, fmt.Sprintf(
		"You sold %s g of gold. %s was added to your withdrawable balance.",
		sale.GramsSold.String(), money(sale.TotalProceeds)))
	return &receipt, nil
}
