package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type LedgerTestSuite struct {
	suite.Suite
	ctx    context.Context
	uow    repository.UnitOfWork
	clock  *testutils.Clock
	ledger *Ledger
	user   uuid.UUID
	admin  uuid.UUID
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	uow, _ := testutils.NewTestUoW(s.T())
	s.uow = uow
	s.clock = testutils.NewClock(start)
	s.ledger = New(uow, s.clock.Now)
	s.user = uuid.New()
	s.admin = uuid.New()
}

func (s *LedgerTestSuite) assertDecimal(expected string, actual decimal.Decimal, msgAndArgs ...any) {
	s.T().Helper()
	s.Truef(dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func (s *LedgerTestSuite) assertBalances(spendable, withdrawable string) {
	s.T().Helper()
	b, err := s.ledger.Balances.Get(s.ctx, s.user)
	s.Require().NoError(err)
	s.assertDecimal(spendable, b.Spendable, "spendable")
	s.assertDecimal(withdrawable, b.Withdrawable, "withdrawable")
}

func (s *LedgerTestSuite) fund(spendable, withdrawable string) {
	s.T().Helper()
	_, err := s.ledger.Balances.Adjust(s.ctx, s.user, dec(spendable), dec(withdrawable))
	s.Require().NoError(err)
}

func (s *LedgerTestSuite) buy(grams, price string) *gold.Lot {
	s.T().Helper()
	var lot *gold.Lot
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		var err error
		lot, _, err = s.ledger.Gold.Purchase(s.ctx, tx, PurchaseOrder{
			UserID:       s.user,
			Grams:        dec(grams),
			PricePerGram: dec(price),
			FeePct:       decimal.Zero,
			LockDays:     30,
			Now:          s.clock.Now(),
		})
		return err
	})
	s.Require().NoError(err)
	return lot
}

func (s *LedgerTestSuite) sell(grams, price string) (*gold.Sale, error) {
	var sale *gold.Sale
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		var err error
		sale, _, err = s.ledger.Gold.Sell(s.ctx, tx, gold.SellRequest{
			OwnerID:      s.user,
			Grams:        dec(grams),
			PricePerGram: dec(price),
			FeePct:       decimal.Zero,
			MinGrams:     decimal.Zero,
			AsOf:         s.clock.Now(),
		})
		return err
	})
	return sale, err
}

func (s *LedgerTestSuite) TestBalanceStore() {
	s.Run("unknown user has zero balances", func() {
		b, err := s.ledger.Balances.Get(s.ctx, uuid.New())
		s.Require().NoError(err)
		s.True(b.Spendable.IsZero())
		s.True(b.Withdrawable.IsZero())
	})

	s.Run("adjust creates the wallet and applies both deltas", func() {
		b, err := s.ledger.Balances.Adjust(s.ctx, s.user, dec("100.50"), dec("20"))
		s.Require().NoError(err)
		s.assertDecimal("100.50", b.Spendable)
		s.assertDecimal("20", b.Withdrawable)
		s.assertBalances("100.50", "20")
	})

	s.Run("shortfall on either side changes nothing", func() {
		_, err := s.ledger.Balances.Adjust(s.ctx, s.user, dec("10"), dec("-20.01"))
		s.ErrorIs(err, common.ErrInsufficientFunds)
		_, err = s.ledger.Balances.Adjust(s.ctx, s.user, dec("-100.51"), dec("5"))
		s.ErrorIs(err, common.ErrInsufficientFunds)
		s.assertBalances("100.50", "20")
	})

	s.Run("balances may reach exactly zero", func() {
		b, err := s.ledger.Balances.Adjust(s.ctx, s.user, dec("-100.50"), dec("-20"))
		s.Require().NoError(err)
		s.True(b.Total().IsZero())
	})

	s.Run("version advances on every write", func() {
		repo, err := s.uow.WalletRepository()
		s.Require().NoError(err)
		before, err := repo.Get(s.ctx, s.user)
		s.Require().NoError(err)
		s.fund("1", "0")
		after, err := repo.Get(s.ctx, s.user)
		s.Require().NoError(err)
		s.Equal(before.Version+1, after.Version)
	})
}

func (s *LedgerTestSuite) TestStaleVersionIsContention() {
	s.fund("50", "0")
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		repo, err := tx.WalletRepository()
		s.Require().NoError(err)
		acct, err := repo.GetForUpdate(s.ctx, s.user)
		s.Require().NoError(err)
		stale := *acct
		s.Require().NoError(repo.Save(s.ctx, acct))
		return repo.Save(s.ctx, &stale)
	})
	s.ErrorIs(err, common.ErrContention)
	s.assertBalances("50", "0")
}

func (s *LedgerTestSuite) TestFIFOSale() {
	s.fund("100", "0")
	first := s.buy("1", "10")
	s.clock.Advance(time.Hour)
	second := s.buy("1", "20")
	s.clock.Advance(time.Hour)
	third := s.buy("1", "30")
	s.assertBalances("40", "0")

	s.clock.AdvanceDays(31)
	sale, err := s.sell("2", "25")
	s.Require().NoError(err)

	s.assertDecimal("20", sale.Profit)
	s.assertDecimal("50", sale.TotalProceeds)
	s.Require().Len(sale.ConsumedLots, 2)
	s.Equal(first.ID, sale.ConsumedLots[0].LotID)
	s.Equal(second.ID, sale.ConsumedLots[1].LotID)
	s.assertBalances("40", "50")

	h, err := s.ledger.Gold.Holdings(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.Require().Len(h.Lots, 1)
	s.Equal(third.ID, h.Lots[0].ID)
	s.assertDecimal("1", h.Lots[0].GramsRemaining)

	sales, err := s.ledger.Gold.Sales(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(sales, 1)
	s.Require().Len(sales[0].ConsumedLots, 2)
	s.Equal(first.ID, sales[0].ConsumedLots[0].LotID)
	s.assertDecimal("10", sales[0].ConsumedLots[0].PricePerGramAtPurchase)
}

func (s *LedgerTestSuite) TestPartialLotConsumption() {
	s.fund("1000", "0")
	lot := s.buy("5", "10")
	s.clock.AdvanceDays(30)

	_, err := s.sell("2.5", "12")
	s.Require().NoError(err)

	h, err := s.ledger.Gold.Holdings(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.Require().Len(h.Lots, 1)
	s.Equal(lot.ID, h.Lots[0].ID)
	s.assertDecimal("2.5", h.Mature)
	s.assertDecimal("5", h.Lots[0].GramsPurchased)
}

func (s *LedgerTestSuite) TestBuyLockSellScenario() {
	s.fund("1000", "0")
	lot := s.buy("10", "80")
	s.assertDecimal("800", lot.TotalCost)
	s.assertBalances("200", "0")

	s.clock.AdvanceDays(29)
	mature, err := s.ledger.Gold.MatureGrams(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.True(mature.IsZero())
	_, err = s.sell("10", "90")
	s.ErrorIs(err, common.ErrInsufficientMatureGold)
	s.assertBalances("200", "0")

	s.clock.AdvanceDays(1)
	mature, err = s.ledger.Gold.MatureGrams(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.assertDecimal("10", mature)

	sale, err := s.sell("10", "90")
	s.Require().NoError(err)
	s.assertDecimal("100", sale.Profit)
	s.assertBalances("200", "900")

	_, err = s.sell("0.0001", "90")
	s.ErrorIs(err, common.ErrInsufficientMatureGold)
}

func (s *LedgerTestSuite) TestPurchaseValidation() {
	s.fund("10", "0")
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Gold.Purchase(s.ctx, tx, PurchaseOrder{
			UserID: s.user, Grams: dec("1"), PricePerGram: dec("80"), LockDays: 30, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrInsufficientFunds)

	err = s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Gold.Purchase(s.ctx, tx, PurchaseOrder{
			UserID: s.user, Grams: dec("0"), PricePerGram: dec("80"), LockDays: 30, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrValidation)

	h, err := s.ledger.Gold.Holdings(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.Empty(h.Lots)
	s.assertBalances("10", "0")
}

func (s *LedgerTestSuite) TestSellBelowMinimum() {
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Gold.Sell(s.ctx, tx, gold.SellRequest{
			OwnerID: s.user, Grams: dec("0.5"), PricePerGram: dec("90"), MinGrams: dec("1"), AsOf: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrBelowMinimum)
}

func (s *LedgerTestSuite) TestSellRejectsSubGramScale() {
	s.fund("1000", "0")
	s.buy("2", "400")
	s.clock.AdvanceDays(31)

	sale, err := s.sell("1.00005", "400")
	s.ErrorIs(err, common.ErrValidation)
	s.Nil(sale)

	h, err := s.ledger.Gold.Holdings(s.ctx, s.user, s.clock.Now())
	s.Require().NoError(err)
	s.Require().Len(h.Lots, 1)
	s.assertDecimal("2", h.Lots[0].GramsRemaining)
	s.assertBalances("200", "0")

	sale, err = s.sell("1.0001", "400")
	s.Require().NoError(err)
	s.assertDecimal("1.0001", sale.GramsSold)
}

func (s *LedgerTestSuite) openPosition(principal string, days int) *investment.Position {
	s.T().Helper()
	var pos *investment.Position
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		var err error
		pos, _, err = s.ledger.Investments.Open(s.ctx, tx, Subscription{
			UserID:       s.user,
			PlanID:       "gold-30",
			Principal:    dec(principal),
			ReturnPct:    dec("10"),
			DurationDays: days,
			Now:          s.clock.Now(),
		})
		return err
	})
	s.Require().NoError(err)
	return pos
}

func (s *LedgerTestSuite) withdrawPosition(userID, positionID uuid.UUID) (*investment.Position, error) {
	var pos *investment.Position
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		var err error
		pos, _, err = s.ledger.Investments.WithdrawMatured(s.ctx, tx, userID, positionID, s.clock.Now())
		return err
	})
	return pos, err
}

func (s *LedgerTestSuite) TestInvestmentLifecycle() {
	s.fund("500", "0")
	pos := s.openPosition("500", 30)
	s.assertBalances("0", "0")
	s.Equal(start.AddDate(0, 0, 30), pos.EndDate)

	s.Run("not yet mature", func() {
		_, err := s.withdrawPosition(s.user, pos.ID)
		s.ErrorIs(err, common.ErrNotYetMature)
	})

	s.Run("other users see not found", func() {
		s.clock.AdvanceDays(30)
		_, err := s.withdrawPosition(uuid.New(), pos.ID)
		s.ErrorIs(err, common.ErrNotFound)
	})

	s.Run("pays out once", func() {
		settled, err := s.withdrawPosition(s.user, pos.ID)
		s.Require().NoError(err)
		s.assertDecimal("550", settled.Payout)
		s.assertBalances("0", "550")

		_, err = s.withdrawPosition(s.user, pos.ID)
		s.ErrorIs(err, common.ErrAlreadySettled)
		s.assertBalances("0", "550")
	})

	s.Run("listing reflects completion", func() {
		list, err := s.ledger.Investments.List(s.ctx, s.user)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(investment.StatusCompleted, list[0].Status)
		s.NotNil(list[0].CompletedAt)
	})
}

func (s *LedgerTestSuite) TestOpenInvestmentInsufficientFunds() {
	s.fund("100", "0")
	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Investments.Open(s.ctx, tx, Subscription{
			UserID: s.user, PlanID: "gold-30", Principal: dec("500"), ReturnPct: dec("10"), DurationDays: 30, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrInsufficientFunds)
	list, err := s.ledger.Investments.List(s.ctx, s.user)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *LedgerTestSuite) decide(fn func(tx repository.UnitOfWork) error) error {
	return s.uow.Do(s.ctx, fn)
}

func (s *LedgerTestSuite) TestTopupWorkflow() {
	var topup *request.Topup
	err := s.decide(func(tx repository.UnitOfWork) error {
		var err error
		topup, err = s.ledger.Requests.SubmitTopup(s.ctx, tx, s.user, dec("250"), "evidence-1", s.clock.Now())
		return err
	})
	s.Require().NoError(err)
	s.Equal(request.StatusPending, topup.Status)
	s.assertBalances("0", "0")

	pending, err := s.ledger.Requests.TopupsByStatus(s.ctx, request.StatusPending)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	err = s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.DecideTopup(s.ctx, tx, Decision{
			RequestID: topup.ID, Decision: request.DecisionApprove, AdminID: s.admin, Note: "ok", Now: s.clock.Now(),
		})
		return err
	})
	s.Require().NoError(err)
	s.assertBalances("250", "0")

	err = s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.DecideTopup(s.ctx, tx, Decision{
			RequestID: topup.ID, Decision: request.DecisionReject, AdminID: s.admin, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrInvalidTransition)
	s.assertBalances("250", "0")

	mine, err := s.ledger.Requests.Topups(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(request.StatusApproved, mine[0].Status)
	s.Equal("ok", mine[0].AdminNote)
	s.Require().NotNil(mine[0].DecidedBy)
	s.Equal(s.admin, *mine[0].DecidedBy)
}

func (s *LedgerTestSuite) TestRejectedTopupMovesNothing() {
	var topup *request.Topup
	s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
		var err error
		topup, err = s.ledger.Requests.SubmitTopup(s.ctx, tx, s.user, dec("80"), "evidence-2", s.clock.Now())
		return err
	}))
	s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.DecideTopup(s.ctx, tx, Decision{
			RequestID: topup.ID, Decision: request.DecisionReject, AdminID: s.admin, Now: s.clock.Now(),
		})
		return err
	}))
	s.assertBalances("0", "0")
}

func (s *LedgerTestSuite) TestWithdrawalReservationRoundTrip() {
	s.fund("0", "150")
	var wr *request.Withdrawal
	s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
		var err error
		wr, _, err = s.ledger.Requests.RequestWithdrawal(s.ctx, tx, s.user, dec("100"), dec("100"), "IBAN XX00", s.clock.Now())
		return err
	}))
	s.assertBalances("0", "50")

	var acct *wallet.Account
	s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
		var err error
		_, acct, err = s.ledger.Requests.DecideWithdrawal(s.ctx, tx, Decision{
			RequestID: wr.ID, Decision: request.DecisionDecline, AdminID: s.admin, Now: s.clock.Now(),
		})
		return err
	}))
	s.assertDecimal("150", acct.Withdrawable)
	s.assertBalances("0", "150")

	err := s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.DecideWithdrawal(s.ctx, tx, Decision{
			RequestID: wr.ID, Decision: request.DecisionApprove, AdminID: s.admin, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrInvalidTransition)
	s.assertBalances("0", "150")
}

func (s *LedgerTestSuite) TestWithdrawalRules() {
	s.fund("0", "150")

	s.Run("below minimum", func() {
		err := s.decide(func(tx repository.UnitOfWork) error {
			_, _, err := s.ledger.Requests.RequestWithdrawal(s.ctx, tx, s.user, dec("99.99"), dec("100"), "", s.clock.Now())
			return err
		})
		s.ErrorIs(err, common.ErrBelowMinimum)
	})

	s.Run("more than withdrawable", func() {
		err := s.decide(func(tx repository.UnitOfWork) error {
			_, _, err := s.ledger.Requests.RequestWithdrawal(s.ctx, tx, s.user, dec("150.01"), dec("100"), "", s.clock.Now())
			return err
		})
		s.ErrorIs(err, common.ErrInsufficientFunds)
		list, err := s.ledger.Requests.Withdrawals(s.ctx, s.user)
		s.Require().NoError(err)
		s.Empty(list)
	})

	s.Run("approval keeps the reservation", func() {
		var wr *request.Withdrawal
		s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
			var err error
			wr, _, err = s.ledger.Requests.RequestWithdrawal(s.ctx, tx, s.user, dec("120"), dec("100"), "IBAN", s.clock.Now())
			return err
		}))
		s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
			_, _, err := s.ledger.Requests.DecideWithdrawal(s.ctx, tx, Decision{
				RequestID: wr.ID, Decision: request.DecisionApprove, AdminID: s.admin, Now: s.clock.Now(),
			})
			return err
		}))
		s.assertBalances("0", "30")
	})
}

func (s *LedgerTestSuite) TestInternalTransfer() {
	s.fund("5", "40")
	var wr *request.Withdrawal
	s.Require().NoError(s.decide(func(tx repository.UnitOfWork) error {
		var err error
		wr, _, err = s.ledger.Requests.TransferInternal(s.ctx, tx, s.user, dec("25"), s.clock.Now())
		return err
	}))
	s.Equal(request.StatusCompleted, wr.Status)
	s.Equal(request.KindInternalTransfer, wr.Kind)
	s.assertBalances("30", "15")

	err := s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.TransferInternal(s.ctx, tx, s.user, dec("15.01"), s.clock.Now())
		return err
	})
	s.ErrorIs(err, common.ErrInsufficientFunds)
	s.assertBalances("30", "15")

	err = s.decide(func(tx repository.UnitOfWork) error {
		_, _, err := s.ledger.Requests.DecideWithdrawal(s.ctx, tx, Decision{
			RequestID: wr.ID, Decision: request.DecisionApprove, AdminID: s.admin, Now: s.clock.Now(),
		})
		return err
	})
	s.ErrorIs(err, common.ErrInvalidTransition)
}
