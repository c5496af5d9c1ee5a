package settlement

import (
	"context"
	"log/slog"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balances returns the user's spendable and withdrawable balances.
func (e *Engine) Balances(ctx context.Context, userID uuid.UUID) (wallet.Balances, error) {
	return e.ledger.Balances.Get(ctx, userID)
}

// balancesOrZero reads balances for an event payload after commit. A failed
// read is logged and reported as zero balances.
func (e *Engine) balancesOrZero(ctx context.Context, logger *slog.Logger, userID uuid.UUID) wallet.Balances {
	b, err := e.Balances(ctx, userID)
	if err != nil {
		logger.Warn("balance read for event failed", "error", err)
		return wallet.Balances{Spendable: decimal.Zero, Withdrawable: decimal.Zero}
	}
	return b
}

// Holdings returns the user's gold split into mature and locked grams.
func (e *Engine) Holdings(ctx context.Context, userID uuid.UUID) (gold.Holdings, error) {
	return e.ledger.Gold.Holdings(ctx, userID, e.now())
}

// MatureGrams returns how many grams the user can sell right now.
func (e *Engine) MatureGrams(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return e.ledger.Gold.MatureGrams(ctx, userID, e.now())
}

// Sales returns the user's gold sales with their lot attribution.
func (e *Engine) Sales(ctx context.Context, userID uuid.UUID) ([]*gold.Sale, error) {
	return e.ledger.Gold.Sales(ctx, userID)
}

// Positions returns the user's investment positions.
func (e *Engine) Positions(ctx context.Context, userID uuid.UUID) ([]*investment.Position, error) {
	return e.ledger.Investments.List(ctx, userID)
}

// Topups returns the user's top-ups.
func (e *Engine) Topups(ctx context.Context, userID uuid.UUID) ([]*request.Topup, error) {
	return e.ledger.Requests.Topups(ctx, userID)
}

// Withdrawals returns the user's withdrawals and internal transfers.
func (e *Engine) Withdrawals(ctx context.Context, userID uuid.UUID) ([]*request.Withdrawal, error) {
	return e.ledger.Requests.Withdrawals(ctx, userID)
}

// PendingTopups is the admin review queue for top-ups, oldest first.
func (e *Engine) PendingTopups(ctx context.Context) ([]*request.Topup, error) {
	return e.ledger.Requests.TopupsByStatus(ctx, request.StatusPending)
}

// PendingWithdrawals is the admin review queue for bank withdrawals, oldest first.
func (e *Engine) PendingWithdrawals(ctx context.Context) ([]*request.Withdrawal, error) {
	return e.ledger.Requests.WithdrawalsByStatus(ctx, request.StatusPending)
}

// Prices returns the quote the user would trade at right now.
func (e *Engine) Prices(ctx context.Context, userID uuid.UUID) (provider.Prices, error) {
	return e.prices.CurrentPrices(ctx, userID)
}

// Plans returns the investment plan catalog.
func (e *Engine) Plans(ctx context.Context) ([]investment.Plan, error) {
	return e.prices.PlanCatalog(ctx)
}
