// Package ledger holds the components that move value between a user's
// balances, gold lots, investment positions and money requests. Every
// mutating method runs inside a caller-supplied unit of work and starts by
// locking the owner's wallet row, so the caller controls the transaction
// and the whole operation commits or rolls back together.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock returns the current time.
type Clock func() time.Time

// BalanceStore owns the two wallet balances.
type BalanceStore struct {
	uow   repository.UnitOfWork
	clock Clock
}

// NewBalanceStore creates a BalanceStore. uow is used for reads and for
// Adjust, which opens its own transaction.
func NewBalanceStore(uow repository.UnitOfWork, clock Clock) *BalanceStore {
	return &BalanceStore{uow: uow, clock: clock}
}

// Lock creates the user's wallet if needed and returns it with its row lock
// held until tx ends.
func (s *BalanceStore) Lock(ctx context.Context, tx repository.UnitOfWork, userID uuid.UUID) (*wallet.Account, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user is required", common.ErrValidation)
	}
	repo, err := tx.WalletRepository()
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureExists(ctx, userID, s.clock()); err != nil {
		return nil, err
	}
	return repo.GetForUpdate(ctx, userID)
}

// AdjustLocked applies both deltas to a wallet obtained from Lock in the same
// tx and writes it back with a version check.
func (s *BalanceStore) AdjustLocked(
	ctx context.Context,
	tx repository.UnitOfWork,
	acct *wallet.Account,
	spendableDelta, withdrawableDelta decimal.Decimal,
) error {
	if err := acct.Apply(spendableDelta, withdrawableDelta, s.clock()); err != nil {
		return err
	}
	repo, err := tx.WalletRepository()
	if err != nil {
		return err
	}
	return repo.Save(ctx, acct)
}

// AdjustIn locks the wallet and applies both deltas inside tx. Either both
// deltas apply or neither does; ErrInsufficientFunds if a balance would go
// negative.
func (s *BalanceStore) AdjustIn(
	ctx context.Context,
	tx repository.UnitOfWork,
	userID uuid.UUID,
	spendableDelta, withdrawableDelta decimal.Decimal,
) (*wallet.Account, error) {
	acct, err := s.Lock(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.AdjustLocked(ctx, tx, acct, spendableDelta, withdrawableDelta); err != nil {
		return nil, err
	}
	return acct, nil
}

// Adjust is AdjustIn in a transaction of its own.
func (s *BalanceStore) Adjust(
	ctx context.Context,
	userID uuid.UUID,
	spendableDelta, withdrawableDelta decimal.Decimal,
) (balances wallet.Balances, err error) {
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		acct, err := s.AdjustIn(ctx, tx, userID, spendableDelta, withdrawableDelta)
		if err != nil {
			return err
		}
		balances = acct.Balances()
		return nil
	})
	return
}

// Get returns the current balances. A user with no wallet yet has zero
// balances.
func (s *BalanceStore) Get(ctx context.Context, userID uuid.UUID) (wallet.Balances, error) {
	repo, err := s.uow.WalletRepository()
	if err != nil {
		return wallet.Balances{}, err
	}
	acct, err := repo.Get(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return wallet.Balances{Spendable: decimal.Zero, Withdrawable: decimal.Zero}, nil
	}
	if err != nil {
		return wallet.Balances{}, err
	}
	return acct.Balances(), nil
}
