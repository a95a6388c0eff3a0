package domain

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Market 旅行目的地，持有自己的商品副本与实时价目表
type Market struct {
	Name    string // 市场名称（唯一）
	catalog []Commodity
	prices  map[string]decimal.Decimal
	rng     *rand.Rand
}

// Quote 价目表中的一行
type Quote struct {
	Commodity Commodity
	Price     decimal.Decimal
}

// NewMarket 创建市场并立即采样一次价格
func NewMarket(name string, catalog []Commodity, rng *rand.Rand) (*Market, error) {
	m := &Market{
		Name:    name,
		catalog: CopyCatalog(catalog),
		prices:  make(map[string]decimal.Decimal, len(catalog)),
		rng:     rng,
	}
	if err := m.RefreshPrices(); err != nil {
		return nil, errors.Wrapf(err, "market %q", name)
	}
	return m, nil
}

// RefreshPrices 重新采样全部商品价格
func (m *Market) RefreshPrices() error {
	if len(m.catalog) == 0 {
		return errors.Wrapf(ErrEmptyMarket, "market %q", m.Name)
	}
	for _, c := range m.catalog {
		m.prices[c.ID] = c.SamplePrice(m.rng)
	}
	return nil
}

// PriceOf 返回商品当前价格
func (m *Market) PriceOf(id string) (decimal.Decimal, error) {
	p, ok := m.prices[id]
	if !ok {
		return decimal.Zero, errors.Wrapf(ErrUnknownCommodity,
			"item id %q not found in %s price list", id, m.Name)
	}
	return p, nil
}

// Quotes 按目录顺序返回价目表
func (m *Market) Quotes() []Quote {
	out := make([]Quote, 0, len(m.catalog))
	for _, c := range m.catalog {
		out = append(out, Quote{Commodity: c, Price: m.prices[c.ID]})
	}
	return out
}

// Prices 返回价格副本（id -> price）
func (m *Market) Prices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m.prices))
	for id, p := range m.prices {
		out[id] = p
	}
	return out
}
