// Package wallet holds the per-user wallet account and the balance
// adjustment rule every ledger mutation goes through.
package wallet

import (
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balances is a point-in-time view of a wallet.
type Balances struct {
	Spendable    decimal.Decimal `json:"spendable"`
	Withdrawable decimal.Decimal `json:"withdrawable"`
}

// Total returns the sum of both balances.
func (b Balances) Total() decimal.Decimal {
	return b.Spendable.Add(b.Withdrawable)
}

// Account is a user's wallet. It is the serialization point for every
// mutation on the user's balances, lots, positions and requests.
//
// Invariants:
//   - Spendable and Withdrawable are never negative.
//   - Version increases by one on every persisted change.
type Account struct {
	UserID       uuid.UUID
	Spendable    decimal.Decimal
	Withdrawable decimal.Decimal
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New returns an empty wallet for userID.
func New(userID uuid.UUID, now time.Time) *Account {
	return &Account{
		UserID:       userID,
		Spendable:    decimal.Zero,
		Withdrawable: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Balances returns the current balances.
func (a *Account) Balances() Balances {
	return Balances{Spendable: a.Spendable, Withdrawable: a.Withdrawable}
}

// Apply adds both deltas to the wallet, all or nothing. It fails with
// common.ErrInsufficientFunds if either result would be negative, leaving
// the account untouched.
func (a *Account) Apply(spendableDelta, withdrawableDelta decimal.Decimal, now time.Time) error {
	spendable := a.Spendable.Add(spendableDelta)
	withdrawable := a.Withdrawable.Add(withdrawableDelta)
	if spendable.IsNegative() {
		return fmt.Errorf("%w: spendable balance %s, requested %s",
			common.ErrInsufficientFunds, a.Spendable.StringFixed(common.MoneyScale), spendableDelta.Neg().StringFixed(common.MoneyScale))
	}
	if withdrawable.IsNegative() {
		return fmt.Errorf("%w: withdrawable balance %s, requested %s",
			common.ErrInsufficientFunds, a.Withdrawable.StringFixed(common.MoneyScale), withdrawableDelta.Neg().StringFixed(common.MoneyScale))
	}
	a.Spendable = spendable
	a.Withdrawable = withdrawable
	a.UpdatedAt = now
	return nil
}
