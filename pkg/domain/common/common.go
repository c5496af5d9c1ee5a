package common

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when a balance adjustment would leave
	// either wallet balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientMatureGold is returned when a sale asks for more grams
	// than the user's matured lots hold.
	ErrInsufficientMatureGold = errors.New("insufficient mature gold")

	// ErrBelowMinimum is returned when an amount or quantity is under the
	// platform minimum for the operation.
	ErrBelowMinimum = errors.New("below platform minimum")

	// ErrNotYetMature is returned when an investment is withdrawn before its end date.
	ErrNotYetMature = errors.New("not yet mature")

	// ErrAlreadySettled is returned when a position has already been paid out.
	ErrAlreadySettled = errors.New("already settled")

	// ErrInvalidTransition is returned when a request is moved out of a terminal state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrContention is returned when the account could not be updated within
	// the retry budget. Callers may retry.
	ErrContention = errors.New("account busy, try again")

	// ErrNotFound is returned when an entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an insert collides with an existing row.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation is returned for malformed or out of range input.
	ErrValidation = errors.New("validation error")
)

// MoneyScale is the number of decimal places balances are held at.
const MoneyScale int32 = 2

// GramScale is the number of decimal places gold quantities are held at.
const GramScale int32 = 4

var hundred = decimal.NewFromInt(100)

// Percent returns pct/100.
func Percent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// DebitAmount rounds an amount taken from a user up to the money scale.
func DebitAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundCeil(MoneyScale)
}

// CreditAmount rounds an amount given to a user down to the money scale.
func CreditAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(MoneyScale)
}

// IsRetryable reports whether err is transient and safe to retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
