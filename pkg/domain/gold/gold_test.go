package gold_test

import (
	"testing"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/gold"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lot(owner uuid.UUID, id string, grams, price string, purchasedAt time.Time) *gold.Lot {
	return &gold.Lot{
		ID:                     uuid.MustParse(id),
		OwnerID:                owner,
		GramsPurchased:         dec(grams),
		GramsRemaining:         dec(grams),
		PricePerGramAtPurchase: dec(price),
		LockDays:               30,
		PurchasedAt:            purchasedAt,
		MaturesAt:              purchasedAt.AddDate(0, 0, 30),
	}
}

func snapshot(lots []*gold.Lot) []string {
	out := make([]string, len(lots))
	for i, l := range lots {
		out[i] = l.GramsRemaining.String()
	}
	return out
}

func TestNewLot(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	l, err := gold.NewLot(owner, dec("2"), dec("100"), dec("1.5"), 30, day0)
	require.NoError(t, err)
	assert.True(t, dec("203").Equal(l.TotalCost), "cost %s", l.TotalCost)
	assert.True(t, l.GramsRemaining.Equal(l.GramsPurchased))
	assert.Equal(t, day0.AddDate(0, 0, 30), l.MaturesAt)
	assert.False(t, l.IsMature(day0.AddDate(0, 0, 29)))
	assert.True(t, l.IsMature(l.MaturesAt))

	tests := []struct {
		name     string
		owner    uuid.UUID
		grams    string
		price    string
		fee      string
		lockDays int
	}{
		{"missing owner", uuid.Nil, "1", "100", "0", 30},
		{"zero grams", owner, "0", "100", "0", 30},
		{"negative grams", owner, "-1", "100", "0", 30},
		{"too many decimals", owner, "0.00001", "100", "0", 30},
		{"zero price", owner, "1", "0", "0", 30},
		{"negative fee", owner, "1", "100", "-1", 30},
		{"negative lock", owner, "1", "100", "0", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gold.NewLot(tt.owner, dec(tt.grams), dec(tt.price), dec(tt.fee), tt.lockDays, day0)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestPurchaseCostRoundsUp(t *testing.T) {
	t.Parallel()
	// 0.3333 × 10 × 1.01 = 3.36633
	assert.True(t, dec("3.37").Equal(gold.PurchaseCost(dec("0.3333"), dec("10"), dec("1"))))
}

func TestSortFIFO(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	later := lot(owner, "00000000-0000-0000-0000-000000000001", "1", "10", day0.Add(time.Hour))
	tieHigh := lot(owner, "00000000-0000-0000-0000-0000000000ff", "1", "10", day0)
	tieLow := lot(owner, "00000000-0000-0000-0000-000000000002", "1", "10", day0)

	lots := []*gold.Lot{later, tieHigh, tieLow}
	gold.SortFIFO(lots)
	assert.Equal(t, []*gold.Lot{tieLow, tieHigh, later}, lots)
}

func TestAllocate_FIFOProfit(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	lots := []*gold.Lot{
		lot(owner, "00000000-0000-0000-0000-000000000003", "1", "30", day0.Add(2*time.Hour)),
		lot(owner, "00000000-0000-0000-0000-000000000001", "1", "10", day0),
		lot(owner, "00000000-0000-0000-0000-000000000002", "1", "20", day0.Add(time.Hour)),
	}
	sale, touched, err := gold.Allocate(lots, gold.SellRequest{
		OwnerID: owner, Grams: dec("2"), PricePerGram: dec("25"), AsOf: day0.AddDate(0, 0, 31),
	})
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(sale.Profit), "profit %s", sale.Profit)
	assert.True(t, dec("50").Equal(sale.TotalProceeds))
	require.Len(t, sale.ConsumedLots, 2)
	assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000001"), sale.ConsumedLots[0].LotID)
	assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000002"), sale.ConsumedLots[1].LotID)
	assert.Len(t, touched, 2)
	assert.True(t, dec("1").Equal(lots[0].GramsRemaining), "30/gram lot untouched")
}

func TestAllocate_EqualTimestampsConsumeLowestIDFirst(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	high := lot(owner, "00000000-0000-0000-0000-00000000000b", "1", "20", day0)
	low := lot(owner, "00000000-0000-0000-0000-00000000000a", "1", "10", day0)

	sale, _, err := gold.Allocate([]*gold.Lot{high, low}, gold.SellRequest{
		OwnerID: owner, Grams: dec("1.5"), PricePerGram: dec("30"), AsOf: day0.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	require.Len(t, sale.ConsumedLots, 2)
	assert.Equal(t, low.ID, sale.ConsumedLots[0].LotID)
	assert.True(t, dec("1").Equal(sale.ConsumedLots[0].GramsTaken))
	assert.Equal(t, high.ID, sale.ConsumedLots[1].LotID)
	assert.True(t, dec("0.5").Equal(sale.ConsumedLots[1].GramsTaken))
	assert.True(t, low.IsExhausted())
	assert.True(t, dec("0.5").Equal(high.GramsRemaining))
}

func TestAllocate_ErrorsLeaveLotsUntouched(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	asOf := day0.AddDate(0, 0, 30)

	tests := []struct {
		name    string
		req     gold.SellRequest
		wantErr error
	}{
		{"more than mature", gold.SellRequest{OwnerID: owner, Grams: dec("2.5"), PricePerGram: dec("10"), AsOf: asOf}, common.ErrInsufficientMatureGold},
		{"below minimum", gold.SellRequest{OwnerID: owner, Grams: dec("0.5"), PricePerGram: dec("10"), MinGrams: dec("1"), AsOf: asOf}, common.ErrBelowMinimum},
		{"sub gram scale", gold.SellRequest{OwnerID: owner, Grams: dec("1.00005"), PricePerGram: dec("10"), AsOf: asOf}, common.ErrValidation},
		{"zero price", gold.SellRequest{OwnerID: owner, Grams: dec("1"), AsOf: asOf}, common.ErrValidation},
		{"fee above 100", gold.SellRequest{OwnerID: owner, Grams: dec("1"), PricePerGram: dec("10"), FeePct: dec("101"), AsOf: asOf}, common.ErrValidation},
		{"other owner", gold.SellRequest{OwnerID: uuid.New(), Grams: dec("1"), PricePerGram: dec("10"), AsOf: asOf}, common.ErrInsufficientMatureGold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lots := []*gold.Lot{
				lot(owner, "00000000-0000-0000-0000-000000000001", "2", "10", day0),
				lot(owner, "00000000-0000-0000-0000-000000000002", "3", "10", day0.Add(time.Hour)), // still locked at asOf
			}
			before := snapshot(lots)

			sale, touched, err := gold.Allocate(lots, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, sale)
			assert.Nil(t, touched)
			assert.Equal(t, before, snapshot(lots))
		})
	}
}

func TestSaleProceedsRoundsDown(t *testing.T) {
	t.Parallel()
	gross, net := gold.SaleProceeds(dec("0.3333"), dec("10"), dec("1"))
	assert.True(t, dec("3.33").Equal(gross), "gross %s", gross)
	// 3.333 × 0.99 = 3.29967
	assert.True(t, dec("3.29").Equal(net), "net %s", net)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	lots := []*gold.Lot{
		lot(owner, "00000000-0000-0000-0000-000000000001", "2", "10", day0),
		lot(owner, "00000000-0000-0000-0000-000000000002", "0.5", "10", day0.AddDate(0, 0, 10)),
	}
	h := gold.Summarize(lots, day0.AddDate(0, 0, 30))
	assert.True(t, dec("2.5").Equal(h.Total))
	assert.True(t, dec("2").Equal(h.Mature))
	assert.True(t, dec("0.5").Equal(h.Locked))
	assert.True(t, dec("2").Equal(gold.MatureGrams(lots, day0.AddDate(0, 0, 30))))
}

// FuzzAllocate checks that a sale never takes more than it sold and never
// drives a lot negative, whatever the quantities.
func FuzzAllocate(f *testing.F) {
	owner := uuid.New()
	asOf := day0.AddDate(0, 0, 30)
	f.Add(int64(10000), int64(20000), int64(30000), int64(25000), false)
	f.Add(int64(1), int64(1), int64(1), int64(3), true)
	f.Add(int64(0), int64(5), int64(0), int64(6), false)
	f.Add(int64(99999), int64(12345), int64(1), int64(-1), true)
	f.Fuzz(func(t *testing.T, a, b, c, sell int64, sameInstant bool) {
		quantities := []int64{a, b, c}
		lots := make([]*gold.Lot, 0, len(quantities))
		original := decimal.Zero
		for i, q := range quantities {
			if q < 0 || q > 1e12 {
				t.Skip()
			}
			at := day0
			if !sameInstant {
				at = day0.Add(time.Duration(i) * time.Minute)
			}
			g := decimal.New(q, -common.GramScale)
			lots = append(lots, &gold.Lot{
				ID:                     uuid.New(),
				OwnerID:                owner,
				GramsPurchased:         g,
				GramsRemaining:         g,
				PricePerGramAtPurchase: dec("10"),
				PurchasedAt:            at,
				MaturesAt:              at,
			})
			original = original.Add(g)
		}
		before := snapshot(lots)

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Allocate panicked: %v (lots=%v, sell=%d)", r, before, sell)
			}
		}()
		sale, _, err := gold.Allocate(lots, gold.SellRequest{
			OwnerID: owner, Grams: decimal.New(sell, -common.GramScale), PricePerGram: dec("12"), AsOf: asOf,
		})
		if err != nil {
			if got := snapshot(lots); !assert.ObjectsAreEqual(before, got) {
				t.Errorf("lots modified on error %v: %v -> %v", err, before, got)
			}
			return
		}

		taken := decimal.Zero
		for _, cl := range sale.ConsumedLots {
			taken = taken.Add(cl.GramsTaken)
		}
		if !taken.Equal(sale.GramsSold) {
			t.Errorf("consumed %s g, sold %s g", taken, sale.GramsSold)
		}
		remaining := decimal.Zero
		for _, l := range lots {
			if l.GramsRemaining.IsNegative() {
				t.Errorf("lot %s went negative: %s", l.ID, l.GramsRemaining)
			}
			remaining = remaining.Add(l.GramsRemaining)
		}
		if !remaining.Add(sale.GramsSold).Equal(original) {
			t.Errorf("grams not conserved: remaining %s + sold %s != %s", remaining, sale.GramsSold, original)
		}
	})
}
