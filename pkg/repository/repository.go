package repository

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/google/uuid"
)

// WalletRepository defines data access for wallet accounts.
type WalletRepository interface {
	// Get returns the wallet without locking it. common.ErrNotFound if the
	// user has no wallet yet.
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Account, error)
	// EnsureExists creates an empty wallet for userID if there is none.
	EnsureExists(ctx context.Context, userID uuid.UUID, now time.Time) error
	// GetForUpdate returns the wallet and holds its row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*wallet.Account, error)
	// Save writes balances back if the stored version still equals
	// a.Version, then increments a.Version. A version mismatch returns
	// common.ErrContention.
	Save(ctx context.Context, a *wallet.Account) error
}

// LotRepository defines data access for gold lots.
type LotRepository interface {
	Create(ctx context.Context, lot *gold.Lot) error
	// ListOpen returns the owner's non-exhausted lots in FIFO order.
	ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*gold.Lot, error)
	// ListMature returns the owner's non-exhausted lots with MaturesAt ≤ asOf in FIFO order.
	ListMature(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]*gold.Lot, error)
	// UpdateRemaining persists GramsRemaining for each lot.
	UpdateRemaining(ctx context.Context, lots []*gold.Lot) error
}

// SaleRepository defines data access for gold sales and their consumption trail.
type SaleRepository interface {
	Create(ctx context.Context, sale *gold.Sale) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*gold.Sale, error)
}

// InvestmentRepository defines data access for investment positions.
type InvestmentRepository interface {
	Create(ctx context.Context, p *investment.Position) error
	Get(ctx context.Context, id uuid.UUID) (*investment.Position, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Position, error)
	// Complete persists a settled position only if it is still active;
	// otherwise common.ErrAlreadySettled.
	Complete(ctx context.Context, p *investment.Position) error
}

// TopupRepository defines data access for top-up requests.
type TopupRepository interface {
	Create(ctx context.Context, t *request.Topup) error
	Get(ctx context.Context, id uuid.UUID) (*request.Topup, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*request.Topup, error)
	ListByStatus(ctx context.Context, status request.Status) ([]*request.Topup, error)
	// UpdateDecision persists a decided top-up only if its stored status is
	// still from; otherwise common.ErrInvalidTransition.
	UpdateDecision(ctx context.Context, t *request.Topup, from request.Status) error
}

// WithdrawalRepository defines data access for withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *request.Withdrawal) error
	Get(ctx context.Context, id uuid.UUID) (*request.Withdrawal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*request.Withdrawal, error)
	ListByStatus(ctx context.Context, status request.Status) ([]*request.Withdrawal, error)
	// UpdateDecision persists a decided withdrawal only if its stored status
	// is still from; otherwise common.ErrInvalidTransition.
	UpdateDecision(ctx context.Context, w *request.Withdrawal, from request.Status) error
}
