package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestAccount(cash, loan, rate int64) *Account {
	return NewAccount(d(cash), d(loan), d(rate), testCatalog())
}

func TestAccount_BuyRequiresStrictlyMoreCash(t *testing.T) {
	a := newTestAccount(1000, 0, 0)

	err := a.Buy("wood", d(100), 10)
	assert.ErrorIs(t, err, ErrInsufficientFunds, "cash equal to total must be rejected")
	assert.True(t, a.Cash.Equal(d(1000)))

	require.NoError(t, a.Buy("wood", d(100), 9))
	assert.True(t, a.Cash.Equal(d(100)), "cash got=%s want=100", a.Cash)
	e, _ := a.Ledger().Entry("wood")
	assert.Equal(t, int64(9), e.Quantity)
}

func TestAccount_BuyExpensiveGoldWithStartingCash(t *testing.T) {
	// 金价最低 4000，初始现金 2000 买不起
	a := newTestAccount(2000, 5000, 10)
	err := a.Buy("gold", d(4000), 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))
	assert.True(t, a.Cash.Equal(d(2000)))
}

func TestAccount_BuyUnknownLeavesCashUntouched(t *testing.T) {
	a := newTestAccount(1000, 0, 0)
	err := a.Buy("arms", d(1), 1)
	assert.ErrorIs(t, err, ErrUnknownCommodity)
	assert.True(t, a.Cash.Equal(d(1000)))
}

func TestAccount_BuyRejectsNonPositiveQuantity(t *testing.T) {
	a := newTestAccount(1000, 0, 0)
	assert.ErrorIs(t, a.Buy("wood", d(1), 0), ErrInvalidQuantity)
	assert.True(t, a.Cash.Equal(d(1000)))
}

func TestAccount_SellCreditsCash(t *testing.T) {
	a := newTestAccount(1000, 0, 0)
	require.NoError(t, a.Buy("wood", d(100), 5))
	require.NoError(t, a.Sell("wood", d(300), 5))
	assert.True(t, a.Cash.Equal(d(2000)), "cash got=%s", a.Cash)

	err := a.Sell("wood", d(300), 1)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.True(t, a.Cash.Equal(d(2000)))
}

func TestAccount_InterestAndRepayScenario(t *testing.T) {
	a := newTestAccount(2000, 5000, 10)

	a.AccrueInterest()
	assert.True(t, a.Loan.Equal(d(5500)), "loan got=%s", a.Loan)

	repaid, err := a.Repay(d(600))
	require.NoError(t, err)
	assert.True(t, repaid.Equal(d(600)))
	assert.True(t, a.Loan.Equal(d(4900)), "loan got=%s", a.Loan)
	assert.True(t, a.Cash.Equal(d(1400)), "cash got=%s", a.Cash)
}

func TestAccount_RepayClampsToLoan(t *testing.T) {
	a := newTestAccount(2000, 300, 10)
	repaid, err := a.Repay(d(1000))
	require.NoError(t, err)
	assert.True(t, repaid.Equal(d(300)))
	assert.True(t, a.Loan.IsZero())
	assert.True(t, a.Cash.Equal(d(1700)))

	// 贷款已清零，再还款无效果
	repaid, err = a.Repay(d(50))
	require.NoError(t, err)
	assert.True(t, repaid.IsZero())
	assert.True(t, a.Cash.Equal(d(1700)))
}

func TestAccount_RepayCanOverdrawCash(t *testing.T) {
	a := newTestAccount(100, 5000, 10)
	_, err := a.Repay(d(500))
	require.NoError(t, err)
	assert.True(t, a.Cash.Equal(d(-400)), "cash got=%s", a.Cash)
}

func TestAccount_RepayRejectsNegative(t *testing.T) {
	a := newTestAccount(100, 5000, 10)
	_, err := a.Repay(d(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, a.Loan.Equal(d(5000)))
}

func TestAccount_InterestSkipsZeroLoan(t *testing.T) {
	a := newTestAccount(100, 0, 10)
	assert.True(t, a.AccrueInterest().IsZero())
}

func TestAccount_NetWorth(t *testing.T) {
	a := newTestAccount(2000, 5000, 10)
	require.NoError(t, a.Buy("wood", d(100), 10))
	nw := a.NetWorth(map[string]decimal.Decimal{"wood": d(200)})
	// 1000 - 5000 + 2000
	assert.True(t, nw.Equal(d(-2000)), "net worth got=%s", nw)
}

func TestAccount_LoanNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := newTestAccount(
			rapid.Int64Range(0, 100000).Draw(t, "cash"),
			rapid.Int64Range(0, 100000).Draw(t, "loan"),
			rapid.Int64Range(0, 50).Draw(t, "rate"),
		)
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "accrue") {
				a.AccrueInterest()
				continue
			}
			before := a.Loan
			repaid, err := a.Repay(d(rapid.Int64Range(0, 200000).Draw(t, "amount")))
			if err != nil {
				t.Fatalf("Repay error: %v", err)
			}
			if repaid.GreaterThan(before) {
				t.Fatalf("repaid %s more than loan %s", repaid, before)
			}
			if a.Loan.IsNegative() {
				t.Fatalf("loan went negative: %s", a.Loan)
			}
		}
	})
}

func TestAccount_BuyNeverOverdraws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := newTestAccount(rapid.Int64Range(0, 50000).Draw(t, "cash"), 0, 0)
		price := rapid.Int64Range(0, 1000).Draw(t, "price")
		qty := rapid.Int64Range(1, 100).Draw(t, "qty")
		if err := a.Buy("wood", d(price), qty); err != nil {
			return
		}
		if !a.Cash.IsPositive() {
			t.Fatalf("cash after buy must stay positive, got %s", a.Cash)
		}
	})
}

func TestAccount_BuyFreeCommodityOverflow(t *testing.T) {
	a := NewAccount(d(10), d(0), d(0), []Commodity{{ID: "free", Label: "Free"}})
	require.NoError(t, a.Buy("free", decimal.Zero, math.MaxInt64))

	err := a.Buy("free", decimal.Zero, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	e, _ := a.Ledger().Entry("free")
	assert.False(t, e.Quantity < 0, "held quantity wrapped to %d", e.Quantity)
	assert.True(t, a.Cash.Equal(d(10)))
}
