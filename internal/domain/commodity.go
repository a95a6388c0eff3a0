package domain

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Commodity 可交易商品定义（价格模型）
// 值类型：市场与账户各自持有独立副本，互不共享
type Commodity struct {
	ID         string // 商品代码（唯一）
	Label      string // 显示名称
	LowerBound int64  // 价格下限（含）
	UpperBound int64  // 价格上限（含）
}

// NewCommodity 创建商品，价格区间非法时返回 ErrConfiguration
func NewCommodity(id, label string, lower, upper int64) (Commodity, error) {
	if id == "" {
		return Commodity{}, errors.Wrap(ErrConfiguration, "commodity id is empty")
	}
	if lower < 0 {
		return Commodity{}, errors.Wrapf(ErrConfiguration, "commodity %q: lower bound %d is negative", id, lower)
	}
	if lower > upper {
		return Commodity{}, errors.Wrapf(ErrConfiguration,
			"commodity %q: upper bound %d cannot be lower than lower bound %d", id, upper, lower)
	}
	if label == "" {
		label = id
	}
	return Commodity{ID: id, Label: label, LowerBound: lower, UpperBound: upper}, nil
}

// SamplePrice 在 [LowerBound, UpperBound] 内均匀采样一个整数价格
func (c Commodity) SamplePrice(rng *rand.Rand) decimal.Decimal {
	// lower >= 0，差值不会溢出；按 uint64 取模覆盖 [0, MaxInt64] 全区间
	span := uint64(c.UpperBound-c.LowerBound) + 1
	return decimal.NewFromInt(c.LowerBound + int64(rng.Uint64N(span)))
}

// Contains 价格是否落在区间内
func (c Commodity) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(decimal.NewFromInt(c.LowerBound)) &&
		price.LessThanOrEqual(decimal.NewFromInt(c.UpperBound))
}

// CopyCatalog 深拷贝商品目录
func CopyCatalog(catalog []Commodity) []Commodity {
	out := make([]Commodity, len(catalog))
	copy(out, catalog)
	return out
}
