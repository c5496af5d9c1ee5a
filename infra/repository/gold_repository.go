package repository

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const fifoOrder = "purchased_at ASC, id ASC"

type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new LotRepository backed by db.
func NewLotRepository(db *gorm.DB) repository.LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) Create(ctx context.Context, lot *gold.Lot) error {
	m := mapLotFromDomain(lot)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *lotRepository) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*gold.Lot, error) {
	var models []GoldLot
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("owner_id = ? AND grams_remaining > 0", ownerID).
			Order(fifoOrder).
			Find(&models).Error
	}); err != nil {
		return nil, err
	}
	return mapLotsToDomain(models), nil
}

func (r *lotRepository) ListMature(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]*gold.Lot, error) {
	var models []GoldLot
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("owner_id = ? AND grams_remaining > 0 AND matures_at <= ?", ownerID, asOf.UTC()).
			Order(fifoOrder).
			Find(&models).Error
	}); err != nil {
		return nil, err
	}
	return mapLotsToDomain(models), nil
}

func (r *lotRepository) UpdateRemaining(ctx context.Context, lots []*gold.Lot) error {
	for _, l := range lots {
		if err := WrapError(func() error {
			return r.db.WithContext(ctx).
				Model(&GoldLot{}).
				Where("id = ?", l.ID).
				Update("grams_remaining", l.GramsRemaining).Error
		}); err != nil {
			return err
		}
	}
	return nil
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new SaleRepository backed by db.
func NewSaleRepository(db *gorm.DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the sale and its consumption trail in one statement batch.
func (r *saleRepository) Create(ctx context.Context, sale *gold.Sale) error {
	m := mapSaleFromDomain(sale)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *saleRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*gold.Sale, error) {
	var models []GoldSale
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Preload("ConsumedLots", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Where("owner_id = ?", ownerID).
			Order("sold_at DESC, id DESC").
			Find(&models).Error
	}); err != nil {
		return nil, err
	}
	sales := make([]*gold.Sale, 0, len(models))
	for i := range models {
		sales = append(sales, mapSaleToDomain(&models[i]))
	}
	return sales, nil
}

func mapLotFromDomain(l *gold.Lot) *GoldLot {
	return &GoldLot{
		ID:                     l.ID,
		OwnerID:                l.OwnerID,
		GramsPurchased:         l.GramsPurchased,
		GramsRemaining:         l.GramsRemaining,
		PricePerGramAtPurchase: l.PricePerGramAtPurchase,
		FeePct:                 l.FeePct,
		TotalCost:              l.TotalCost,
		LockDays:               l.LockDays,
		PurchasedAt:            l.PurchasedAt.UTC(),
		MaturesAt:              l.MaturesAt.UTC(),
	}
}

func mapLotsToDomain(models []GoldLot) []*gold.Lot {
	lots := make([]*gold.Lot, 0, len(models))
	for _, m := range models {
		lots = append(lots, &gold.Lot{
			ID:                     m.ID,
			OwnerID:                m.OwnerID,
			GramsPurchased:         m.GramsPurchased,
			GramsRemaining:         m.GramsRemaining,
			PricePerGramAtPurchase: m.PricePerGramAtPurchase,
			FeePct:                 m.FeePct,
			TotalCost:              m.TotalCost,
			LockDays:               m.LockDays,
			PurchasedAt:            m.PurchasedAt.UTC(),
			MaturesAt:              m.MaturesAt.UTC(),
		})
	}
	return lots
}

func mapSaleFromDomain(s *gold.Sale) *GoldSale {
	m := &GoldSale{
		ID:                 s.ID,
		OwnerID:            s.OwnerID,
		GramsSold:          s.GramsSold,
		PricePerGramAtSale: s.PricePerGramAtSale,
		FeePct:             s.FeePct,
		GrossProceeds:      s.GrossProceeds,
		TotalProceeds:      s.TotalProceeds,
		Profit:             s.Profit,
		SoldAt:             s.SoldAt.UTC(),
		ConsumedLots:       make([]GoldSaleLot, 0, len(s.ConsumedLots)),
	}
	for i, c := range s.ConsumedLots {
		m.ConsumedLots = append(m.ConsumedLots, GoldSaleLot{
			SaleID:                 s.ID,
			Position:               i,
			LotID:                  c.LotID,
			GramsTaken:             c.GramsTaken,
			PricePerGramAtPurchase: c.PricePerGramAtPurchase,
		})
	}
	return m
}

func mapSaleToDomain(m *GoldSale) *gold.Sale {
	s := &gold.Sale{
		ID:                 m.ID,
		OwnerID:            m.OwnerID,
		GramsSold:          m.GramsSold,
		PricePerGramAtSale: m.PricePerGramAtSale,
		FeePct:             m.FeePct,
		GrossProceeds:      m.GrossProceeds,
		TotalProceeds:      m.TotalProceeds,
		Profit:             m.Profit,
		SoldAt:             m.SoldAt.UTC(),
		ConsumedLots:       make([]gold.ConsumedLot, 0, len(m.ConsumedLots)),
	}
	for _, c := range m.ConsumedLots {
		s.ConsumedLots = append(s.ConsumedLots, gold.ConsumedLot{
			LotID:                  c.LotID,
			GramsTaken:             c.GramsTaken,
			PricePerGramAtPurchase: c.PricePerGramAtPurchase,
		})
	}
	return s
}
