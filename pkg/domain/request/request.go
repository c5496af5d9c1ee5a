package request

import (
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind of withdrawal.
type Kind string

const (
	KindInternalTransfer Kind = "internal_transfer"
	KindBankWithdrawal   Kind = "bank_withdrawal"
)

// Review is the admin side of a decided request.
type Review struct {
	AdminNote string     `json:"admin_note,omitempty"`
	DecidedBy *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

func (r *Review) record(adminID uuid.UUID, note string, now time.Time) {
	at := now.UTC()
	r.AdminNote = note
	r.DecidedBy = &adminID
	r.DecidedAt = &at
}

// Topup asks staff to credit the spendable balance after checking the
// externally stored evidence. No balance moves until it is approved.
type Topup struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	EvidenceRef string          `json:"evidence_ref"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Review
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	if !amount.Equal(amount.Round(common.MoneyScale)) {
		return fmt.Errorf("%w: amount supports at most %d decimal places", common.ErrValidation, common.MoneyScale)
	}
	return nil
}

// NewTopup returns a pending top-up.
func NewTopup(ownerID uuid.UUID, amount decimal.Decimal, evidenceRef string, now time.Time) (*Topup, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if evidenceRef == "" {
		return nil, fmt.Errorf("%w: evidence reference is required", common.ErrValidation)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Topup{
		ID:          id,
		OwnerID:     ownerID,
		Amount:      amount,
		EvidenceRef: evidenceRef,
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
	}, nil
}

// Decide moves a pending top-up to its terminal state and returns the
// status it left.
func (t *Topup) Decide(d Decision, adminID uuid.UUID, note string, now time.Time) (Status, error) {
	if TopupMachine.IsTerminal(t.Status) {
		return "", fmt.Errorf("%w: top-up already %s", common.ErrInvalidTransition, t.Status)
	}
	to, err := TopupMachine.Target(d)
	if err != nil {
		return "", err
	}
	if err := TopupMachine.Transition(t.Status, to); err != nil {
		return "", err
	}
	from := t.Status
	t.Status = to
	t.record(adminID, note, now)
	return from, nil
}

// Withdrawal is either a bank withdrawal awaiting review or the audit record
// of an internal transfer, which completes immediately.
type Withdrawal struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	BankDetails string          `json:"bank_details,omitempty"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Review
}

// NewBankWithdrawal returns a pending bank withdrawal. The caller reserves
// Amount from the withdrawable balance before persisting it.
func NewBankWithdrawal(ownerID uuid.UUID, amount, minimum decimal.Decimal, bankDetails string, now time.Time) (*Withdrawal, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if amount.LessThan(minimum) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", common.ErrBelowMinimum, minimum.StringFixed(common.MoneyScale))
	}
	return newWithdrawal(ownerID, KindBankWithdrawal, amount, bankDetails, StatusPending, now)
}

// NewInternalTransfer returns the completed record of a withdrawable to
// spendable transfer.
func NewInternalTransfer(ownerID uuid.UUID, amount decimal.Decimal, now time.Time) (*Withdrawal, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return newWithdrawal(ownerID, KindInternalTransfer, amount, "", StatusCompleted, now)
}

func newWithdrawal(ownerID uuid.UUID, kind Kind, amount decimal.Decimal, bankDetails string, status Status, now time.Time) (*Withdrawal, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Withdrawal{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        kind,
		Amount:      amount,
		BankDetails: bankDetails,
		Status:      status,
		CreatedAt:   now.UTC(),
	}, nil
}

// Decide moves a pending bank withdrawal to its terminal state and returns
// the status it left. Internal transfers cannot be decided.
func (w *Withdrawal) Decide(d Decision, adminID uuid.UUID, note string, now time.Time) (Status, error) {
	if w.Kind != KindBankWithdrawal {
		return "", fmt.Errorf("%w: %s has no review step", common.ErrInvalidTransition, w.Kind)
	}
	if WithdrawalMachine.IsTerminal(w.Status) {
		return "", fmt.Errorf("%w: withdrawal already %s", common.ErrInvalidTransition, w.Status)
	}
	to, err := WithdrawalMachine.Target(d)
	if err != nil {
		return "", err
	}
	if err := WithdrawalMachine.Transition(w.Status, to); err != nil {
		return "", err
	}
	from := w.Status
	w.Status = to
	w.record(adminID, note, now)
	return from, nil
}

// Refund is the withdrawable delta a decided bank withdrawal settles with:
// the reservation comes back on decline, nothing moves on approve.
func (w *Withdrawal) Refund() decimal.Decimal {
	if w.Status == StatusDeclined {
		return w.Amount
	}
	return decimal.Zero
}
