// Package investment models fixed-term investment plans and the positions
// users open against them.
package investment

import (
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a position.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Plan is a catalog entry users subscribe to.
type Plan struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	PrincipalOptions []decimal.Decimal `json:"principal_options"`
	ReturnPct        decimal.Decimal   `json:"return_pct"`
	DurationDays     int               `json:"duration_days"`
}

// AllowsPrincipal reports whether principal is one of the plan's options.
func (p Plan) AllowsPrincipal(principal decimal.Decimal) bool {
	for _, opt := range p.PrincipalOptions {
		if opt.Equal(principal) {
			return true
		}
	}
	return false
}

// Position is one plan subscription.
type Position struct {
	ID               uuid.UUID       `json:"id"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	PlanID           string          `json:"plan_id"`
	Principal        decimal.Decimal `json:"principal"`
	ReturnPercentage decimal.Decimal `json:"return_percentage"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	Status           Status          `json:"status"`
	Payout           decimal.Decimal `json:"payout"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// Open validates and returns a new active position. The caller debits
// Principal in the same unit of work.
func Open(ownerID uuid.UUID, planID string, principal, returnPct decimal.Decimal, durationDays int, now time.Time) (*Position, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", common.ErrValidation)
	}
	if !principal.Equal(principal.Round(common.MoneyScale)) {
		return nil, fmt.Errorf("%w: principal supports at most %d decimal places", common.ErrValidation, common.MoneyScale)
	}
	if returnPct.IsNegative() {
		return nil, fmt.Errorf("%w: return percentage must not be negative", common.ErrValidation)
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("%w: duration must be at least one day", common.ErrValidation)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Position{
		ID:               id,
		OwnerID:          ownerID,
		PlanID:           planID,
		Principal:        principal,
		ReturnPercentage: returnPct,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, durationDays),
		Status:           StatusActive,
		Payout:           decimal.Zero,
	}, nil
}

// PayoutAmount is principal × (1 + returnPercentage/100), rounded down.
func (p *Position) PayoutAmount() decimal.Decimal {
	return common.CreditAmount(p.Principal.Add(p.Principal.Mul(common.Percent(p.ReturnPercentage))))
}

// IsMature reports whether the position can be withdrawn at asOf.
func (p *Position) IsMature(asOf time.Time) bool {
	return !asOf.Before(p.EndDate)
}

// Settle marks an active, mature position completed and returns the payout.
func (p *Position) Settle(asOf time.Time) (decimal.Decimal, error) {
	if p.Status == StatusCompleted {
		return decimal.Zero, fmt.Errorf("%w: position %s", common.ErrAlreadySettled, p.ID)
	}
	if !p.IsMature(asOf) {
		return decimal.Zero, fmt.Errorf("%w: position %s matures at %s",
			common.ErrNotYetMature, p.ID, p.EndDate.Format(time.RFC3339))
	}
	payout := p.PayoutAmount()
	at := asOf.UTC()
	p.Status = StatusCompleted
	p.Payout = payout
	p.CompletedAt = &at
	return payout, nil
}
