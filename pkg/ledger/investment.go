package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentLedger opens fixed-term positions and pays them out once.
type InvestmentLedger struct {
	uow      repository.UnitOfWork
	balances *BalanceStore
}

// NewInvestmentLedger creates an InvestmentLedger.
func NewInvestmentLedger(uow repository.UnitOfWork, balances *BalanceStore) *InvestmentLedger {
	return &InvestmentLedger{uow: uow, balances: balances}
}

// Subscription describes a position to open.
type Subscription struct {
	UserID       uuid.UUID
	PlanID       string
	Principal    decimal.Decimal
	ReturnPct    decimal.Decimal
	DurationDays int
	Now          time.Time
}

// Open debits the principal from spendable and records an active position.
func (l *InvestmentLedger) Open(ctx context.Context, tx repository.UnitOfWork, s Subscription) (*investment.Position, *wallet.Account, error) {
	pos, err := investment.Open(s.UserID, s.PlanID, s.Principal, s.ReturnPct, s.DurationDays, s.Now)
	if err != nil {
		return nil, nil, err
	}
	acct, err := l.balances.AdjustIn(ctx, tx, s.UserID, s.Principal.Neg(), decimal.Zero)
	if err != nil {
		return nil, nil, err
	}
	positions, err := tx.InvestmentRepository()
	if err != nil {
		return nil, nil, err
	}
	if err := positions.Create(ctx, pos); err != nil {
		return nil, nil, err
	}
	return pos, acct, nil
}

// WithdrawMatured completes a mature active position owned by userID and
// credits its payout to withdrawable. A position someone else owns is
// reported as not found.
func (l *InvestmentLedger) WithdrawMatured(
	ctx context.Context,
	tx repository.UnitOfWork,
	userID, positionID uuid.UUID,
	now time.Time,
) (*investment.Position, *wallet.Account, error) {
	acct, err := l.balances.Lock(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	positions, err := tx.InvestmentRepository()
	if err != nil {
		return nil, nil, err
	}
	pos, err := positions.Get(ctx, positionID)
	if err != nil {
		return nil, nil, err
	}
	if pos.OwnerID != userID {
		return nil, nil, fmt.Errorf("%w: position %s", common.ErrNotFound, positionID)
	}
	payout, err := pos.Settle(now)
	if err != nil {
		return nil, nil, err
	}
	if err := positions.Complete(ctx, pos); err != nil {
		return nil, nil, err
	}
	if err := l.balances.AdjustLocked(ctx, tx, acct, decimal.Zero, payout); err != nil {
		return nil, nil, err
	}
	return pos, acct, nil
}

// List returns the user's positions, newest first.
func (l *InvestmentLedger) List(ctx context.Context, userID uuid.UUID) ([]*investment.Position, error) {
	positions, err := l.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return positions.ListByOwner(ctx, userID)
}
