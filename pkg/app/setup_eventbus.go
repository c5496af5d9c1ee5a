package app

import (
	"context"
	"fmt"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
)

// settlementTypes are the events the audit handler records.
var settlementTypes = []events.EventType{
	events.EventTypeGoldPurchased,
	events.EventTypeGoldSold,
	events.EventTypeInvestmentOpened,
	events.EventTypeInvestmentPaidOut,
	events.EventTypeTopupSubmitted,
	events.EventTypeTopupDecided,
	events.EventTypeWithdrawalRequested,
	events.EventTypeWithdrawalDecided,
	events.EventTypeFundsTransferred,
}

// setupEventBus registers the application's own consumers: an audit log of
// every committed settlement and the log-backed delivery of user messages.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("component", "audit")

	for _, t := range settlementTypes {
		bus.Register(t.String(), func(_ context.Context, e events.Event) error {
			s, ok := e.(events.Settled)
			if !ok {
				return fmt.Errorf("audit: unexpected event %T", e)
			}
			logger.Info("settlement committed",
				"kind", s.Kind,
				"userID", s.UserID,
				"subjectID", s.SubjectID,
				"amount", s.Amount.String(),
				"grams", s.Grams.String(),
				"status", s.Status,
				"spendable", s.Spendable.String(),
				"withdrawable", s.Withdrawable.String(),
			)
			return nil
		})
	}

	bus.Register(events.EventTypeUserNotified.String(), func(_ context.Context, e events.Event) error {
		n, ok := e.(events.UserNotified)
		if !ok {
			return fmt.Errorf("notify: unexpected event %T", e)
		}
		a.Deps.Logger.Info("user notified", "userID", n.UserID, "message", n.Message)
		return nil
	})
}
