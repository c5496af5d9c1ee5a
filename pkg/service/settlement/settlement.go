// Package settlement exposes the public money and gold operations. Each
// operation is one unit of work over the ledger, retried with exponential
// backoff when the account is contended, and followed, after commit only,
// by a user notification and a settlement event.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/ledger"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rules are the platform parameters the engine enforces.
type Rules struct {
	GoldLockDays      int
	MinSellGrams      decimal.Decimal
	MinWithdrawal     decimal.Decimal
	MaxRetries        int
	RetryBaseInterval time.Duration
	RetryMaxInterval  time.Duration
}

// RulesFrom converts the ledger config section.
func RulesFrom(cfg *config.Ledger) Rules {
	return Rules{
		GoldLockDays:      cfg.GoldLockDays,
		MinSellGrams:      cfg.MinSellGrams,
		MinWithdrawal:     cfg.MinWithdrawal,
		MaxRetries:        cfg.MaxRetries,
		RetryBaseInterval: cfg.RetryBaseInterval,
		RetryMaxInterval:  cfg.RetryMaxInterval,
	}
}

// Deps holds the engine's collaborators. Notifier and Bus may be nil.
type Deps struct {
	Uow      repository.UnitOfWork
	Prices   provider.PriceOracle
	Notifier provider.Notifier
	Bus      eventbus.Bus
	Clock    ledger.Clock
	Logger   *slog.Logger
}

// Receipt is a committed record together with the owner's balances right
// after the commit.
type Receipt[T any] struct {
	Record   T               `json:"record"`
	Balances wallet.Balances `json:"balances"`
}

// Engine runs the settlement operations.
type Engine struct {
	uow      repository.UnitOfWork
	ledger   *ledger.Ledger
	prices   provider.PriceOracle
	notifier provider.Notifier
	bus      eventbus.Bus
	clock    ledger.Clock
	rules    Rules
	logger   *slog.Logger
}

// New creates an Engine.
func New(deps Deps, rules Rules) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if rules.MaxRetries < 0 {
		rules.MaxRetries = 0
	}
	return &Engine{
		uow:      deps.Uow,
		ledger:   ledger.New(deps.Uow, clock),
		prices:   deps.Prices,
		notifier: deps.Notifier,
		bus:      deps.Bus,
		clock:    clock,
		rules:    rules,
		logger:   logger,
	}
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// atomically runs fn in a fresh transaction, retrying on contention until
// the retry budget is spent.
func (e *Engine) atomically(ctx context.Context, logger *slog.Logger, fn func(tx repository.UnitOfWork) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := e.uow.Do(ctx, fn)
		if err == nil {
			return nil
		}
		if common.IsRetryable(err) {
			logger.Debug("account contended, retrying", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	if e.rules.RetryBaseInterval > 0 {
		policy.InitialInterval = e.rules.RetryBaseInterval
	}
	if e.rules.RetryMaxInterval > 0 {
		policy.MaxInterval = e.rules.RetryMaxInterval
	}
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(e.rules.MaxRetries)), ctx))
	if err != nil && common.IsRetryable(err) {
		return fmt.Errorf("%w: gave up after %d attempts", common.ErrContention, attempt)
	}
	return err
}

// settled tells the user and the event bus about a committed operation.
// Failures here never undo the commit; they are logged and dropped.
func (e *Engine) settled(ctx context.Context, logger *slog.Logger, event events.Settled, message string) {
	event.EventID = uuid.New()
	event.OccurredAt = e.now()
	if e.notifier != nil && message != "" {
		if err := e.notifier.Notify(ctx, event.UserID, message); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}
	if e.bus != nil {
		if err := e.bus.Emit(ctx, event); err != nil {
			logger.Warn("event publish failed", "event", event.Type(), "error", err)
		}
	}
}

func settledEvent(kind events.EventType, userID, subjectID uuid.UUID, amount decimal.Decimal, b wallet.Balances) events.Settled {
	return events.Settled{
		Kind:         kind,
		UserID:       userID,
		SubjectID:    subjectID,
		Amount:       amount,
		Grams:        decimal.Zero,
		Spendable:    b.Spendable,
		Withdrawable: b.Withdrawable,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(common.MoneyScale)
}
