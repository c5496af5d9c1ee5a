package ledger

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestWorkflow runs top-ups, bank withdrawals and internal transfers
// through their review states.
type RequestWorkflow struct {
	uow      repository.UnitOfWork
	balances *BalanceStore
}

// NewRequestWorkflow creates a RequestWorkflow.
func NewRequestWorkflow(uow repository.UnitOfWork, balances *BalanceStore) *RequestWorkflow {
	return &RequestWorkflow{uow: uow, balances: balances}
}

// Decision is an admin's ruling on a pending request.
type Decision struct {
	RequestID uuid.UUID
	Decision  request.Decision
	AdminID   uuid.UUID
	Note      string
	Now       time.Time
}

// SubmitTopup records a pending top-up. Balances do not move until approval.
func (w *RequestWorkflow) SubmitTopup(
	ctx context.Context,
	tx repository.UnitOfWork,
	userID uuid.UUID,
	amount decimal.Decimal,
	evidenceRef string,
	now time.Time,
) (*request.Topup, error) {
	t, err := request.NewTopup(userID, amount, evidenceRef, now)
	if err != nil {
		return nil, err
	}
	wallets, err := tx.WalletRepository()
	if err != nil {
		return nil, err
	}
	if err := wallets.EnsureExists(ctx, userID, now); err != nil {
		return nil, err
	}
	topups, err := tx.TopupRepository()
	if err != nil {
		return nil, err
	}
	if err := topups.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DecideTopup approves or rejects a pending top-up. Approval credits the
// amount to spendable in the same transaction.
func (w *RequestWorkflow) DecideTopup(ctx context.Context, tx repository.UnitOfWork, d Decision) (*request.Topup, *wallet.Account, error) {
	topups, err := tx.TopupRepository()
	if err != nil {
		return nil, nil, err
	}
	t, err := topups.Get(ctx, d.RequestID)
	if err != nil {
		return nil, nil, err
	}
	acct, err := w.balances.Lock(ctx, tx, t.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	from, err := t.Decide(d.Decision, d.AdminID, d.Note, d.Now)
	if err != nil {
		return nil, nil, err
	}
	if err := topups.UpdateDecision(ctx, t, from); err != nil {
		return nil, nil, err
	}
	if t.Status == request.StatusApproved {
		if err := w.balances.AdjustLocked(ctx, tx, acct, t.Amount, decimal.Zero); err != nil {
			return nil, nil, err
		}
	}
	return t, acct, nil
}

// RequestWithdrawal reserves amount from withdrawable and records a pending
// bank withdrawal.
func (w *RequestWorkflow) RequestWithdrawal(
	ctx context.Context,
	tx repository.UnitOfWork,
	userID uuid.UUID,
	amount, minimum decimal.Decimal,
	bankDetails string,
	now time.Time,
) (*request.Withdrawal, *wallet.Account, error) {
	wr, err := request.NewBankWithdrawal(userID, amount, minimum, bankDetails, now)
	if err != nil {
		return nil, nil, err
	}
	acct, err := w.balances.AdjustIn(ctx, tx, userID, decimal.Zero, amount.Neg())
	if err != nil {
		return nil, nil, err
	}
	withdrawals, err := tx.WithdrawalRepository()
	if err != nil {
		return nil, nil, err
	}
	if err := withdrawals.Create(ctx, wr); err != nil {
		return nil, nil, err
	}
	return wr, acct, nil
}

// DecideWithdrawal approves or declines a pending bank withdrawal. Decline
// returns the reservation to withdrawable; approval moves nothing.
func (w *RequestWorkflow) DecideWithdrawal(ctx context.Context, tx repository.UnitOfWork, d Decision) (*request.Withdrawal, *wallet.Account, error) {
	withdrawals, err := tx.WithdrawalRepository()
	if err != nil {
		return nil, nil, err
	}
	wr, err := withdrawals.Get(ctx, d.RequestID)
	if err != nil {
		return nil, nil, err
	}
	acct, err := w.balances.Lock(ctx, tx, wr.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	from, err := wr.Decide(d.Decision, d.AdminID, d.Note, d.Now)
	if err != nil {
		return nil, nil, err
	}
	if err := withdrawals.UpdateDecision(ctx, wr, from); err != nil {
		return nil, nil, err
	}
	if refund := wr.Refund(); refund.IsPositive() {
		if err := w.balances.AdjustLocked(ctx, tx, acct, decimal.Zero, refund); err != nil {
			return nil, nil, err
		}
	}
	return wr, acct, nil
}

// TransferInternal moves amount from withdrawable to spendable in one
// adjustment and keeps a completed record of it.
func (w *RequestWorkflow) TransferInternal(
	ctx context.Context,
	tx repository.UnitOfWork,
	userID uuid.UUID,
	amount decimal.Decimal,
	now time.Time,
) (*request.Withdrawal, *wallet.Account, error) {
	wr, err := request.NewInternalTransfer(userID, amount, now)
	if err != nil {
		return nil, nil, err
	}
	acct, err := w.balances.AdjustIn(ctx, tx, userID, amount, amount.Neg())
	if err != nil {
		return nil, nil, err
	}
	withdrawals, err := tx.WithdrawalRepository()
	if err != nil {
		return nil, nil, err
	}
	if err := withdrawals.Create(ctx, wr); err != nil {
		return nil, nil, err
	}
	return wr, acct, nil
}

// Topups lists the user's top-ups, newest first.
func (w *RequestWorkflow) Topups(ctx context.Context, userID uuid.UUID) ([]*request.Topup, error) {
	topups, err := w.uow.TopupRepository()
	if err != nil {
		return nil, err
	}
	return topups.ListByOwner(ctx, userID)
}

// TopupsByStatus lists top-ups in status, oldest first.
func (w *RequestWorkflow) TopupsByStatus(ctx context.Context, status request.Status) ([]*request.Topup, error) {
	topups, err := w.uow.TopupRepository()
	if err != nil {
		return nil, err
	}
	return topups.ListByStatus(ctx, status)
}

// Withdrawals lists the user's withdrawals and transfers, newest first.
func (w *RequestWorkflow) Withdrawals(ctx context.Context, userID uuid.UUID) ([]*request.Withdrawal, error) {
	withdrawals, err := w.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	return withdrawals.ListByOwner(ctx, userID)
}

// WithdrawalsByStatus lists withdrawals in status, oldest first.
func (w *RequestWorkflow) WithdrawalsByStatus(ctx context.Context, status request.Status) ([]*request.Withdrawal, error) {
	withdrawals, err := w.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	return withdrawals.ListByStatus(ctx, status)
}
