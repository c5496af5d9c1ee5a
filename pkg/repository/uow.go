package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside one database transaction. Every repository obtained from
// the UnitOfWork passed to fn shares that transaction, so the whole of fn
// commits or rolls back together.
//
//	err := uow.Do(ctx, func(tx UnitOfWork) error {
//	    wallets, err := tx.WalletRepository()
//	    ...
//	})
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current transaction/session.
	GetRepository(repoType reflect.Type) (any, error)

	WalletRepository() (WalletRepository, error)
	LotRepository() (LotRepository, error)
	SaleRepository() (SaleRepository, error)
	InvestmentRepository() (InvestmentRepository, error)
	TopupRepository() (TopupRepository, error)
	WithdrawalRepository() (WithdrawalRepository, error)
}
