package ledger

import "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"

// Ledger bundles the components sharing one BalanceStore.
type Ledger struct {
	Balances    *BalanceStore
	Gold        *GoldLotLedger
	Investments *InvestmentLedger
	Requests    *RequestWorkflow
}

// New wires every ledger component over uow.
func New(uow repository.UnitOfWork, clock Clock) *Ledger {
	balances := NewBalanceStore(uow, clock)
	return &Ledger{
		Balances:    balances,
		Gold:        NewGoldLotLedger(uow, balances),
		Investments: NewInvestmentLedger(uow, balances),
		Requests:    NewRequestWorkflow(uow, balances),
	}
}
