package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a wallet record in the database.
type Wallet struct {
	UserID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SpendableBalance    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	WithdrawableBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Version             int64           `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Wallet) TableName() string { return "wallets" }

// GoldLot represents a purchased lot. The (owner_id, matures_at) index
// serves the mature-grams query.
type GoldLot struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID                uuid.UUID       `gorm:"type:uuid;not null;index:idx_gold_lots_owner_matures,priority:1"`
	GramsPurchased         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	GramsRemaining         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PricePerGramAtPurchase decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	FeePct                 decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	TotalCost              decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	LockDays               int             `gorm:"not null"`
	PurchasedAt            time.Time       `gorm:"not null"`
	MaturesAt              time.Time       `gorm:"not null;index:idx_gold_lots_owner_matures,priority:2"`
}

func (GoldLot) TableName() string { return "gold_lots" }

// GoldSale represents one sell action.
type GoldSale struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	GramsSold          decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PricePerGramAtSale decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	FeePct             decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	GrossProceeds      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	TotalProceeds      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Profit             decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	SoldAt             time.Time       `gorm:"not null"`
	ConsumedLots       []GoldSaleLot   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (GoldSale) TableName() string { return "gold_sales" }

// GoldSaleLot is one line of a sale's FIFO consumption trail.
type GoldSaleLot struct {
	SaleID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position               int             `gorm:"primaryKey"`
	LotID                  uuid.UUID       `gorm:"type:uuid;not null;index"`
	GramsTaken             decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PricePerGramAtPurchase decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

func (GoldSaleLot) TableName() string { return "gold_sale_lots" }

// InvestmentPosition represents a plan subscription.
type InvestmentPosition struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanID           string          `gorm:"type:varchar(64);not null"`
	Principal        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	ReturnPercentage decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	StartDate        time.Time       `gorm:"not null"`
	EndDate          time.Time       `gorm:"not null"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	Payout           decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	CompletedAt      *time.Time
}

func (InvestmentPosition) TableName() string { return "investment_positions" }

// TopupRequest represents a wallet top-up awaiting or past review.
type TopupRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	EvidenceRef string          `gorm:"type:varchar(255);not null"`
	Status      string          `gorm:"type:varchar(16);not null;index"`
	AdminNote   string          `gorm:"type:text"`
	DecidedBy   *uuid.UUID      `gorm:"type:uuid"`
	DecidedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

func (TopupRequest) TableName() string { return "topup_requests" }

// WithdrawalRequest represents a bank withdrawal or internal transfer.
type WithdrawalRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        string          `gorm:"type:varchar(32);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BankDetails string          `gorm:"type:text"`
	Status      string          `gorm:"type:varchar(16);not null;index"`
	AdminNote   string          `gorm:"type:text"`
	DecidedBy   *uuid.UUID      `gorm:"type:uuid"`
	DecidedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }

// Models lists every table, in dependency order, for AutoMigrate.
func Models() []any {
	return []any{
		&Wallet{},
		&GoldLot{},
		&GoldSale{},
		&GoldSaleLot{},
		&InvestmentPosition{},
		&TopupRequest{},
		&WithdrawalRequest{},
	}
}
