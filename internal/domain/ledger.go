package domain

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// HoldingEntry 单个商品的持仓
type HoldingEntry struct {
	Quantity    int64           // 持有数量（非负）
	AverageCost decimal.Decimal // 加权平均成本；数量为 0 时恒为 0
}

// Holding 持仓快照（按目录顺序输出给渲染层）
type Holding struct {
	Commodity Commodity
	HoldingEntry
}

// Ledger 按商品记录持仓数量与平均成本
// 构造时为目录中每个商品建立一条记录，之后只通过 Acquire/Dispose 修改
type Ledger struct {
	catalog []Commodity
	entries map[string]*HoldingEntry
}

// NewLedger 创建账本（拷贝目录）
func NewLedger(catalog []Commodity) *Ledger {
	l := &Ledger{
		catalog: CopyCatalog(catalog),
		entries: make(map[string]*HoldingEntry, len(catalog)),
	}
	for _, c := range l.catalog {
		l.entries[c.ID] = &HoldingEntry{AverageCost: decimal.Zero}
	}
	return l
}

func (l *Ledger) entry(id string) (*HoldingEntry, error) {
	e, ok := l.entries[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCommodity, "commodity %q not found in inventory", id)
	}
	return e, nil
}

// Acquire 买入入账，重新计算加权平均成本
// avg = (q*avg + d*price) / (q + d)
func (l *Ledger) Acquire(id string, unitPrice decimal.Decimal, quantity int64) error {
	e, err := l.entry(id)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "acquire %q: quantity=%d", id, quantity)
	}
	if quantity > math.MaxInt64-e.Quantity {
		return errors.Wrapf(ErrInvalidQuantity, "acquire %q: quantity=%d would overflow held=%d", id, quantity, e.Quantity)
	}
	if unitPrice.IsNegative() {
		return errors.Errorf("acquire %q: negative unit price %s", id, unitPrice)
	}

	held := decimal.NewFromInt(e.Quantity)
	delta := decimal.NewFromInt(quantity)
	value := held.Mul(e.AverageCost).Add(delta.Mul(unitPrice))
	avg := value.Div(held.Add(delta))

	// 数量与成本同时更新
	e.Quantity += quantity
	e.AverageCost = avg
	return nil
}

// Dispose 卖出出账；清仓时平均成本归零，部分卖出成本不变
func (l *Ledger) Dispose(id string, quantity int64) error {
	e, err := l.entry(id)
	if err != nil {
		return err
	}
	if quantity <= 0 || quantity > e.Quantity {
		return errors.Wrapf(ErrInsufficientQuantity,
			"dispose %q: requested=%d held=%d", id, quantity, e.Quantity)
	}
	e.Quantity -= quantity
	if e.Quantity == 0 {
		e.AverageCost = decimal.Zero
	}
	return nil
}

// Entry 返回单个商品持仓（副本）
func (l *Ledger) Entry(id string) (HoldingEntry, error) {
	e, err := l.entry(id)
	if err != nil {
		return HoldingEntry{}, err
	}
	return *e, nil
}

// Entries 按目录顺序返回全部持仓快照
func (l *Ledger) Entries() []Holding {
	out := make([]Holding, 0, len(l.catalog))
	for _, c := range l.catalog {
		out = append(out, Holding{Commodity: c, HoldingEntry: *l.entries[c.ID]})
	}
	return out
}

// MarketValue 按给定价格计算持仓市值；缺少报价的商品按平均成本计
func (l *Ledger) MarketValue(prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range l.catalog {
		e := l.entries[c.ID]
		if e.Quantity == 0 {
			continue
		}
		price, ok := prices[c.ID]
		if !ok {
			price = e.AverageCost
		}
		total = total.Add(price.Mul(decimal.NewFromInt(e.Quantity)))
	}
	return total
}
