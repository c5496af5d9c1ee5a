package settlement

import (
	"context"
	"fmt"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/ledger"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitTopup records a top-up awaiting review. Nothing is credited yet.
func (e *Engine) SubmitTopup(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	evidenceRef string,
) (*request.Topup, error) {
	logger := e.logger.With("op", "SubmitTopup", "userID", userID, "amount", amount.String())
	logger.Info("SubmitTopup started")

	var topup *request.Topup
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		var err error
		topup, err = e.ledger.Requests.SubmitTopup(ctx, tx, userID, amount, evidenceRef, e.now())
		return err
	})
	if err != nil {
		logger.Error("SubmitTopup failed", "error", err)
		return nil, err
	}

	logger.Info("SubmitTopup successful", "topupID", topup.ID)
	ev := settledEvent(events.EventTypeTopupSubmitted, userID, topup.ID, topup.Amount, e.balancesOrZero(ctx, logger, userID))
	ev.Status = string(topup.Status)
	e.settled(ctx, logger, ev,
		fmt.Sprintf("We received your top-up of %s and will review it shortly.", money(topup.Amount)))
	return topup, nil
}

// DecideTopup approves or rejects a pending top-up on behalf of adminID.
func (e *Engine) DecideTopup(
	ctx context.Context,
	adminID, topupID uuid.UUID,
	decision request.Decision,
	note string,
) (*Receipt[*request.Topup], error) {
	logger := e.logger.With("op", "DecideTopup", "adminID", adminID, "topupID", topupID, "decision", decision)
	logger.Info("DecideTopup started")

	var receipt Receipt[*request.Topup]
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		t, acct, err := e.ledger.Requests.DecideTopup(ctx, tx, ledger.Decision{
			RequestID: topupID,
			Decision:  decision,
			AdminID:   adminID,
			Note:      note,
			Now:       e.now(),
		})
		if err != nil {
			return err
		}
		receipt = Receipt[*request.Topup]{Record: t, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("DecideTopup failed", "error", err)
		return nil, err
	}

	t := receipt.Record
	logger.Info("DecideTopup successful", "userID", t.OwnerID, "status", t.Status)
	message := fmt.Sprintf("Your top-up of %s was approved and added to your balance.", money(t.Amount))
	if t.Status != request.StatusApproved {
		message = fmt.Sprintf("Your top-up of %s was rejected.", money(t.Amount))
	}
	ev := settledEvent(events.EventTypeTopupDecided, t.OwnerID, t.ID, t.Amount, receipt.Balances)
	ev.Status = string(t.Status)
	e.settled(ctx, logger, ev, withNote(message, note))
	return &receipt, nil
}

// RequestWithdrawal reserves amount from withdrawable and queues a bank
// withdrawal for review.
func (e *Engine) RequestWithdrawal(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	bankDetails string,
) (*Receipt[*request.Withdrawal], error) {
	logger := e.logger.With("op", "RequestWithdrawal", "userID", userID, "amount", amount.String())
	logger.Info("RequestWithdrawal started")

	var receipt Receipt[*request.Withdrawal]
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		wr, acct, err := e.ledger.Requests.RequestWithdrawal(ctx, tx, userID, amount, e.rules.MinWithdrawal, bankDetails, e.now())
		if err != nil {
			return err
		}
		receipt = Receipt[*request.Withdrawal]{Record: wr, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("RequestWithdrawal failed", "error", err)
		return nil, err
	}

	wr := receipt.Record
	logger.Info("RequestWithdrawal successful", "withdrawalID", wr.ID)
	ev := settledEvent(events.EventTypeWithdrawalRequested, userID, wr.ID, wr.Amount, receipt.Balances)
	ev.Status = string(wr.Status)
	e.settled(ctx, logger, ev,
		fmt.Sprintf("Your withdrawal of %s is pending review.", money(wr.Amount)))
	return &receipt, nil
}

// DecideWithdrawal approves or declines a pending bank withdrawal on behalf
// of adminID. Declining returns the reserved amount to withdrawable.
func (e *Engine) DecideWithdrawal(
	ctx context.Context,
	adminID, withdrawalID uuid.UUID,
	decision request.Decision,
	note string,
) (*Receipt[*request.Withdrawal], error) {
	logger := e.logger.With("op", "DecideWithdrawal", "adminID", adminID, "withdrawalID", withdrawalID, "decision", decision)
	logger.Info("DecideWithdrawal started")

	var receipt Receipt[*request.Withdrawal]
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		wr, acct, err := e.ledger.Requests.DecideWithdrawal(ctx, tx, ledger.Decision{
			RequestID: withdrawalID,
			Decision:  decision,
			AdminID:   adminID,
			Note:      note,
			Now:       e.now(),
		})
		if err != nil {
			return err
		}
		receipt = Receipt[*request.Withdrawal]{Record: wr, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("DecideWithdrawal failed", "error", err)
		return nil, err
	}

	wr := receipt.Record
	logger.Info("DecideWithdrawal successful", "userID", wr.OwnerID, "status", wr.Status)
	message := fmt.Sprintf("Your withdrawal of %s was approved and is on its way.", money(wr.Amount))
	if wr.Status == request.StatusDeclined {
		message = fmt.Sprintf("Your withdrawal of %s was declined and returned to your withdrawable balance.", money(wr.Amount))
	}
	ev := settledEvent(events.EventTypeWithdrawalDecided, wr.OwnerID, wr.ID, wr.Amount, receipt.Balances)
	ev.Status = string(wr.Status)
	e.settled(ctx, logger, ev, withNote(message, note))
	return &receipt, nil
}

// TransferWithdrawableToSpendable moves amount between the user's own
// balances in one step.
func (e *Engine) TransferWithdrawableToSpendable(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (*Receipt[*request.Withdrawal], error) {
	logger := e.logger.With("op", "TransferWithdrawableToSpendable", "userID", userID, "amount", amount.String())
	logger.Info("TransferWithdrawableToSpendable started")

	var receipt Receipt[*request.Withdrawal]
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		wr, acct, err := e.ledger.Requests.TransferInternal(ctx, tx, userID, amount, e.now())
		if err != nil {
			return err
		}
		receipt = Receipt[*request.Withdrawal]{Record: wr, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("TransferWithdrawableToSpendable failed", "error", err)
		return nil, err
	}

	wr := receipt.Record
	logger.Info("TransferWithdrawableToSpendable successful", "transferID", wr.ID)
	ev := settledEvent(events.EventTypeFundsTransferred, userID, wr.ID, wr.Amount, receipt.Balances)
	ev.Status = string(wr.Status)
	e.settled(ctx, logger, ev,
		fmt.Sprintf("%s moved from your withdrawable to your spendable balance.", money(wr.Amount)))
	return &receipt, nil
}

func withNote(message, note string) string {
	if note == "" {
		return message
	}
	return message + " Note: " + note
}
