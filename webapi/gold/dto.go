package gold

import (
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/shopspring/decimal"
)

//revive:disable

// TradeRequest is the body of a buy or sell.
type TradeRequest struct {
	Grams decimal.Decimal `json:"grams" validate:"required,gt=0"`
}

// LotResponse is a purchase together with the balances it left.
type LotResponse struct {
	Lot      *gold.Lot       `json:"lot"`
	Balances wallet.Balances `json:"balances"`
}

// SaleResponse is a sale together with the balances it left.
type SaleResponse struct {
	Sale     *gold.Sale      `json:"sale"`
	Balances wallet.Balances `json:"balances"`
}
