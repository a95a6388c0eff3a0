package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testCatalog() []Commodity {
	return []Commodity{
		{ID: "gold", Label: "Gold", LowerBound: 4000, UpperBound: 12000},
		{ID: "wood", Label: "Wood", LowerBound: 100, UpperBound: 800},
	}
}

func TestLedger_WeightedAverageCost(t *testing.T) {
	l := NewLedger(testCatalog())

	require.NoError(t, l.Acquire("gold", d(100), 10))
	require.NoError(t, l.Acquire("gold", d(200), 10))

	e, err := l.Entry("gold")
	require.NoError(t, err)
	assert.Equal(t, int64(20), e.Quantity)
	assert.True(t, e.AverageCost.Equal(d(150)), "avg got=%s want=150", e.AverageCost)
}

func TestLedger_PartialDisposeKeepsCost(t *testing.T) {
	l := NewLedger(testCatalog())
	require.NoError(t, l.Acquire("wood", d(300), 4))
	require.NoError(t, l.Dispose("wood", 3))

	e, _ := l.Entry("wood")
	assert.Equal(t, int64(1), e.Quantity)
	assert.True(t, e.AverageCost.Equal(d(300)))
}

func TestLedger_FullDisposeResetsCost(t *testing.T) {
	l := NewLedger(testCatalog())
	require.NoError(t, l.Acquire("wood", d(300), 4))
	require.NoError(t, l.Dispose("wood", 4))

	e, _ := l.Entry("wood")
	assert.Equal(t, int64(0), e.Quantity)
	assert.True(t, e.AverageCost.IsZero())
}

func TestLedger_DisposeMoreThanHeld(t *testing.T) {
	l := NewLedger(testCatalog())
	require.NoError(t, l.Acquire("wood", d(300), 2))

	err := l.Dispose("wood", 3)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	err = l.Dispose("wood", 0)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	e, _ := l.Entry("wood")
	assert.Equal(t, int64(2), e.Quantity, "failed dispose must not change quantity")
}

func TestLedger_UnknownCommodity(t *testing.T) {
	l := NewLedger(testCatalog())
	assert.ErrorIs(t, l.Acquire("arms", d(1), 1), ErrUnknownCommodity)
	assert.ErrorIs(t, l.Dispose("arms", 1), ErrUnknownCommodity)
	_, err := l.Entry("arms")
	assert.ErrorIs(t, err, ErrUnknownCommodity)
}

func TestLedger_AcquireRejectsNonPositiveQuantity(t *testing.T) {
	l := NewLedger(testCatalog())
	assert.ErrorIs(t, l.Acquire("gold", d(10), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, l.Acquire("gold", d(10), -5), ErrInvalidQuantity)

	e, _ := l.Entry("gold")
	assert.Equal(t, int64(0), e.Quantity)
	assert.True(t, e.AverageCost.IsZero())
}

func TestLedger_EntriesInCatalogOrder(t *testing.T) {
	l := NewLedger(testCatalog())
	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "gold", entries[0].Commodity.ID)
	assert.Equal(t, "wood", entries[1].Commodity.ID)
}

func TestLedger_MarketValue(t *testing.T) {
	l := NewLedger(testCatalog())
	require.NoError(t, l.Acquire("gold", d(5000), 2))
	require.NoError(t, l.Acquire("wood", d(100), 3))

	// wood 无报价时按成本计
	v := l.MarketValue(map[string]decimal.Decimal{"gold": d(6000)})
	assert.True(t, v.Equal(d(12300)), "got=%s", v)
}

func TestLedger_AcquireDisposeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewLedger(testCatalog())
		lots := rapid.IntRange(1, 10).Draw(t, "lots")
		var total int64
		for i := 0; i < lots; i++ {
			qty := rapid.Int64Range(1, 1000).Draw(t, "qty")
			price := rapid.Int64Range(0, 50000).Draw(t, "price")
			if err := l.Acquire("gold", d(price), qty); err != nil {
				t.Fatalf("Acquire error: %v", err)
			}
			total += qty
		}
		e, _ := l.Entry("gold")
		if e.Quantity != total {
			t.Fatalf("quantity got=%d want=%d", e.Quantity, total)
		}
		if e.AverageCost.IsNegative() || e.AverageCost.GreaterThan(d(50000)) {
			t.Fatalf("average cost %s out of price range", e.AverageCost)
		}
		if err := l.Dispose("gold", total); err != nil {
			t.Fatalf("Dispose error: %v", err)
		}
		e, _ = l.Entry("gold")
		if e.Quantity != 0 || !e.AverageCost.IsZero() {
			t.Fatalf("after full dispose got qty=%d avg=%s", e.Quantity, e.AverageCost)
		}
	})
}

func TestLedger_AverageCostIsWeightedMean(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewLedger(testCatalog())
		q1 := rapid.Int64Range(1, 500).Draw(t, "q1")
		p1 := rapid.Int64Range(0, 20000).Draw(t, "p1")
		q2 := rapid.Int64Range(1, 500).Draw(t, "q2")
		p2 := rapid.Int64Range(0, 20000).Draw(t, "p2")

		_ = l.Acquire("wood", d(p1), q1)
		_ = l.Acquire("wood", d(p2), q2)

		e, _ := l.Entry("wood")
		want := d(q1*p1 + q2*p2).Div(d(q1 + q2))
		if !e.AverageCost.Sub(want).Abs().LessThan(decimal.New(1, -10)) {
			t.Fatalf("avg got=%s want=%s", e.AverageCost, want)
		}
	})
}

func TestLedger_AcquireRejectsQuantityOverflow(t *testing.T) {
	l := NewLedger([]Commodity{{ID: "free", Label: "Free", LowerBound: 0, UpperBound: 0}})
	require.NoError(t, l.Acquire("free", decimal.Zero, math.MaxInt64))

	err := l.Acquire("free", decimal.Zero, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	e, _ := l.Entry("free")
	assert.Equal(t, int64(math.MaxInt64), e.Quantity)
	assert.True(t, e.AverageCost.IsZero())
}
