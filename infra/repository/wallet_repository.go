package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new WalletRepository backed by db.
func NewWalletRepository(db *gorm.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Get(ctx context.Context, userID uuid.UUID) (*wallet.Account, error) {
	var m Wallet
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error
	}); err != nil {
		return nil, err
	}
	return mapWalletToDomain(&m), nil
}

func (r *walletRepository) EnsureExists(ctx context.Context, userID uuid.UUID, now time.Time) error {
	m := Wallet{
		UserID:              userID,
		SpendableBalance:    decimal.Zero,
		WithdrawableBalance: decimal.Zero,
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Create(&m).Error
	})
}

func (r *walletRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*wallet.Account, error) {
	var m Wallet
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "user_id = ?", userID).Error
	}); err != nil {
		return nil, err
	}
	return mapWalletToDomain(&m), nil
}

func (r *walletRepository) Save(ctx context.Context, a *wallet.Account) error {
	var result *gorm.DB
	if err := WrapError(func() error {
		result = r.db.WithContext(ctx).
			Model(&Wallet{}).
			Where("user_id = ? AND version = ?", a.UserID, a.Version).
			Updates(map[string]any{
				"spendable_balance":    a.Spendable,
				"withdrawable_balance": a.Withdrawable,
				"version":              a.Version + 1,
				"updated_at":           a.UpdatedAt.UTC(),
			})
		return result.Error
	}); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: wallet %s changed since version %d", common.ErrContention, a.UserID, a.Version)
	}
	a.Version++
	return nil
}

func mapWalletToDomain(m *Wallet) *wallet.Account {
	return &wallet.Account{
		UserID:       m.UserID,
		Spendable:    m.SpendableBalance,
		Withdrawable: m.WithdrawableBalance,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
