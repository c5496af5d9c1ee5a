package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
//
// Repositories handed out inside Do share the transaction, so a wallet lock
// taken through one of them covers writes made through the others.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*repository.WalletRepository)(nil)).Elem():     func(db *gorm.DB) any { return NewWalletRepository(db) },
			reflect.TypeOf((*repository.LotRepository)(nil)).Elem():        func(db *gorm.DB) any { return NewLotRepository(db) },
			reflect.TypeOf((*repository.SaleRepository)(nil)).Elem():       func(db *gorm.DB) any { return NewSaleRepository(db) },
			reflect.TypeOf((*repository.InvestmentRepository)(nil)).Elem(): func(db *gorm.DB) any { return NewInvestmentRepository(db) },
			reflect.TypeOf((*repository.TopupRepository)(nil)).Elem():      func(db *gorm.DB) any { return NewTopupRepository(db) },
			reflect.TypeOf((*repository.WithdrawalRepository)(nil)).Elem(): func(db *gorm.DB) any { return NewWithdrawalRepository(db) },
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
	return MapGormErrorToDomain(err)
}

// GetRepository returns the repository registered for repoType, bound to the
// current transaction. Outside Do it is bound to the plain connection pool.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}

func getTyped[T any](u *UoW) (T, error) {
	var zero T
	repo, err := u.GetRepository(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	typed, ok := repo.(T)
	if !ok {
		return zero, fmt.Errorf("repository type assertion failed for %T", zero)
	}
	return typed, nil
}

// WalletRepository returns the wallet repository for this unit of work.
func (u *UoW) WalletRepository() (repository.WalletRepository, error) {
	return getTyped[repository.WalletRepository](u)
}

// LotRepository returns the gold lot repository for this unit of work.
func (u *UoW) LotRepository() (repository.LotRepository, error) {
	return getTyped[repository.LotRepository](u)
}

// SaleRepository returns the gold sale repository for this unit of work.
func (u *UoW) SaleRepository() (repository.SaleRepository, error) {
	return getTyped[repository.SaleRepository](u)
}

// InvestmentRepository returns the investment repository for this unit of work.
func (u *UoW) InvestmentRepository() (repository.InvestmentRepository, error) {
	return getTyped[repository.InvestmentRepository](u)
}

// TopupRepository returns the top-up repository for this unit of work.
func (u *UoW) TopupRepository() (repository.TopupRepository, error) {
	return getTyped[repository.TopupRepository](u)
}

// WithdrawalRepository returns the withdrawal repository for this unit of work.
func (u *UoW) WithdrawalRepository() (repository.WithdrawalRepository, error) {
	return getTyped[repository.WithdrawalRepository](u)
}
