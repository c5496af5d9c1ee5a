package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/ledger"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenInvestment subscribes the user to planID with one of the plan's
// principal options, debited from spendable.
func (e *Engine) OpenInvestment(
	ctx context.Context,
	userID uuid.UUID,
	planID string,
	principal decimal.Decimal,
) (*Receipt[*investment.Position], error) {
	logger := e.logger.With("op", "OpenInvestment", "userID", userID, "planID", planID, "principal", principal.String())
	logger.Info("OpenInvestment started")

	plan, err := e.plan(ctx, planID)
	if err != nil {
		logger.Error("OpenInvestment failed: plan lookup", "error", err)
		return nil, err
	}
	if !plan.AllowsPrincipal(principal) {
		err := fmt.Errorf("%w: principal %s is not offered by plan %s", common.ErrValidation, money(principal), plan.ID)
		logger.Error("OpenInvestment failed", "error", err)
		return nil, err
	}

	var receipt Receipt[*investment.Position]
	err = e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		pos, acct, err := e.ledger.Investments.Open(ctx, tx, ledger.Subscription{
			UserID:       userID,
			PlanID:       plan.ID,
			Principal:    principal,
			ReturnPct:    plan.ReturnPct,
			DurationDays: plan.DurationDays,
			Now:          e.now(),
		})
		if err != nil {
			return err
		}
		receipt = Receipt[*investment.Position]{Record: pos, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("OpenInvestment failed", "error", err)
		return nil, err
	}

	pos := receipt.Record
	logger.Info("OpenInvestment successful", "positionID", pos.ID, "endDate", pos.EndDate)
	e.settled(ctx, logger,
		settledEvent(events.EventTypeInvestmentOpened, userID, pos.ID, pos.Principal, receipt.Balances),
		fmt.Sprintf("Your %s investment of %s has started and matures on %s.",
			plan.Name, money(pos.Principal), pos.EndDate.Format(time.DateOnly)))
	return &receipt, nil
}

// WithdrawMaturedInvestment pays out a matured position to withdrawable.
// A position can be paid out once.
func (e *Engine) WithdrawMaturedInvestment(
	ctx context.Context,
	userID, positionID uuid.UUID,
) (*Receipt[*investment.Position], error) {
	logger := e.logger.With("op", "WithdrawMaturedInvestment", "userID", userID, "positionID", positionID)
	logger.Info("WithdrawMaturedInvestment started")

	var receipt Receipt[*investment.Position]
	err := e.atomically(ctx, logger, func(tx repository.UnitOfWork) error {
		pos, acct, err := e.ledger.Investments.WithdrawMatured(ctx, tx, userID, positionID, e.now())
		if err != nil {
			return err
		}
		receipt = Receipt[*investment.Position]{Record: pos, Balances: acct.Balances()}
		return nil
	})
	if err != nil {
		logger.Error("WithdrawMaturedInvestment failed", "error", err)
		return nil, err
	}

	pos := receipt.Record
	logger.Info("WithdrawMaturedInvestment successful", "payout", pos.Payout.String())
	e.settled(ctx, logger,
		settledEvent(events.EventTypeInvestmentPaidOut, userID, pos.ID, pos.Payout, receipt.Balances),
		fmt.Sprintf("Your investment matured. %s was added to your withdrawable balance.", money(pos.Payout)))
	return &receipt, nil
}

func (e *Engine) plan(ctx context.Context, planID string) (investment.Plan, error) {
	plans, err := e.prices.PlanCatalog(ctx)
	if err != nil {
		return investment.Plan{}, err
	}
	for _, p := range plans {
		if p.ID == planID {
			return p, nil
		}
	}
	return investment.Plan{}, fmt.Errorf("%w: plan %q", common.ErrNotFound, planID)
}
