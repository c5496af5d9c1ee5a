package repository

import (
	"context"
	"fmt"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a new InvestmentRepository backed by db.
func NewInvestmentRepository(db *gorm.DB) repository.InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, p *investment.Position) error {
	m := mapPositionFromDomain(p)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *investmentRepository) Get(ctx context.Context, id uuid.UUID) (*investment.Position, error) {
	var m InvestmentPosition
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return mapPositionToDomain(&m), nil
}

func (r *investmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Position, error) {
	var models []InvestmentPosition
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("owner_id = ?", ownerID).
			Order("start_date DESC, id DESC").
			Find(&models).Error
	}); err != nil {
		return nil, err
	}
	positions := make([]*investment.Position, 0, len(models))
	for i := range models {
		positions = append(positions, mapPositionToDomain(&models[i]))
	}
	return positions, nil
}

// Complete flips status active → completed. The status guard makes a second
// payout of the same position a no-op at the row level.
func (r *investmentRepository) Complete(ctx context.Context, p *investment.Position) error {
	var result *gorm.DB
	if err := WrapError(func() error {
		result = r.db.WithContext(ctx).
			Model(&InvestmentPosition{}).
			Where("id = ? AND status = ?", p.ID, string(investment.StatusActive)).
			Updates(map[string]any{
				"status":       string(p.Status),
				"payout":       p.Payout,
				"completed_at": p.CompletedAt,
			})
		return result.Error
	}); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: position %s", common.ErrAlreadySettled, p.ID)
	}
	return nil
}

func mapPositionFromDomain(p *investment.Position) *InvestmentPosition {
	return &InvestmentPosition{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		PlanID:           p.PlanID,
		Principal:        p.Principal,
		ReturnPercentage: p.ReturnPercentage,
		StartDate:        p.StartDate.UTC(),
		EndDate:          p.EndDate.UTC(),
		Status:           string(p.Status),
		Payout:           p.Payout,
		CompletedAt:      p.CompletedAt,
	}
}

func mapPositionToDomain(m *InvestmentPosition) *investment.Position {
	p := &investment.Position{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		PlanID:           m.PlanID,
		Principal:        m.Principal,
		ReturnPercentage: m.ReturnPercentage,
		StartDate:        m.StartDate.UTC(),
		EndDate:          m.EndDate.UTC(),
		Status:           investment.Status(m.Status),
		Payout:           m.Payout,
	}
	if m.CompletedAt != nil {
		at := m.CompletedAt.UTC()
		p.CompletedAt = &at
	}
	return p
}
