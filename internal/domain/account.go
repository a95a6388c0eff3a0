package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Account 玩家资金状态
type Account struct {
	Cash     decimal.Decimal // 现金（还款可能使其为负）
	Loan     decimal.Decimal // 贷款余额（非负）
	LoanRate decimal.Decimal // 每回合利率（百分比）
	ledger   *Ledger
}

// NewAccount 创建账户，持仓账本使用独立的目录副本
func NewAccount(cash, loan, rate decimal.Decimal, catalog []Commodity) *Account {
	return &Account{
		Cash:     cash,
		Loan:     loan,
		LoanRate: rate,
		ledger:   NewLedger(catalog),
	}
}

// Ledger 返回持仓账本
func (a *Account) Ledger() *Ledger {
	return a.ledger
}

// Buy 买入：要求现金严格大于总价（等于也拒绝），入账成功后才扣款
func (a *Account) Buy(id string, unitPrice decimal.Decimal, quantity int64) error {
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "buy %q: quantity=%d", id, quantity)
	}
	total := unitPrice.Mul(decimal.NewFromInt(quantity))
	if !a.Cash.GreaterThan(total) {
		return errors.Wrapf(ErrInsufficientFunds,
			"buy %d %s: purchase value %s should not be higher than cash %s", quantity, id, total, a.Cash)
	}
	if err := a.ledger.Acquire(id, unitPrice, quantity); err != nil {
		return err
	}
	a.Cash = a.Cash.Sub(total)
	return nil
}

// Sell 卖出：先出账（数量不足时报错），再入现金
func (a *Account) Sell(id string, unitPrice decimal.Decimal, quantity int64) error {
	if err := a.ledger.Dispose(id, quantity); err != nil {
		return err
	}
	a.Cash = a.Cash.Add(unitPrice.Mul(decimal.NewFromInt(quantity)))
	return nil
}

// AccrueInterest 计息：loan += loan * rate / 100
// 每次调用都会复利一次，调用方保证每回合只调用一次
func (a *Account) AccrueInterest() decimal.Decimal {
	if !a.Loan.IsPositive() {
		return a.Loan
	}
	interest := a.Loan.Mul(a.LoanRate).Div(hundred)
	a.Loan = a.Loan.Add(interest)
	return a.Loan
}

// Repay 还款：实际还款额 = min(amount, loan)，超额部分直接截断
// 不做资金校验，现金可能变为负数
func (a *Account) Repay(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "repay %s", amount)
	}
	effective := decimal.Min(amount, a.Loan)
	a.Loan = a.Loan.Sub(effective)
	a.Cash = a.Cash.Sub(effective)
	return effective, nil
}

// NetWorth 净值 = 现金 - 贷款 + 持仓市值
func (a *Account) NetWorth(prices map[string]decimal.Decimal) decimal.Decimal {
	return a.Cash.Sub(a.Loan).Add(a.ledger.MarketValue(prices))
}
