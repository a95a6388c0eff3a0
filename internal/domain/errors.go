package domain

import (
	"github.com/pkg/errors"
)

// 核心错误（全部为逻辑/校验错误，核心层不做任何 I/O）
var (
	// ErrConfiguration 商品价格区间等启动配置非法（启动阶段致命）
	ErrConfiguration = errors.New("invalid configuration")
	// ErrUnknownCommodity 商品不在目录/价目表中
	ErrUnknownCommodity = errors.New("unknown commodity")
	// ErrInsufficientQuantity 卖出数量超过持仓
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrInsufficientFunds 现金不足以支付买入总额
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoCurrentMarket 尚未到达任何市场
	ErrNoCurrentMarket = errors.New("no current market")
	// ErrGameOver 回合已用尽
	ErrGameOver = errors.New("game over")
	// ErrInvalidSelection 目的地序号/名称无效
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrEmptyMarket 市场价目表为空
	ErrEmptyMarket = errors.New("price list cannot be empty")
	// ErrInvalidQuantity 交易数量必须为正
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidAmount 还款金额不能为负
	ErrInvalidAmount = errors.New("amount must not be negative")
)

// ErrorKind 错误分类（供命令结果使用）
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfiguration
	KindUnknownCommodity
	KindInsufficientQuantity
	KindInsufficientFunds
	KindNoCurrentMarket
	KindGameOver
	KindInvalidSelection
	KindEmptyMarket
	KindInvalidQuantity
	KindInvalidAmount
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindConfiguration:
		return "configuration"
	case KindUnknownCommodity:
		return "unknown_commodity"
	case KindInsufficientQuantity:
		return "insufficient_quantity"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNoCurrentMarket:
		return "no_current_market"
	case KindGameOver:
		return "game_over"
	case KindInvalidSelection:
		return "invalid_selection"
	case KindEmptyMarket:
		return "empty_market"
	case KindInvalidQuantity:
		return "invalid_quantity"
	case KindInvalidAmount:
		return "invalid_amount"
	default:
		return "other"
	}
}

var kindTable = []struct {
	err  error
	kind ErrorKind
}{
	{ErrConfiguration, KindConfiguration},
	{ErrUnknownCommodity, KindUnknownCommodity},
	{ErrInsufficientQuantity, KindInsufficientQuantity},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrNoCurrentMarket, KindNoCurrentMarket},
	{ErrGameOver, KindGameOver},
	{ErrInvalidSelection, KindInvalidSelection},
	{ErrEmptyMarket, KindEmptyMarket},
	{ErrInvalidQuantity, KindInvalidQuantity},
	{ErrInvalidAmount, KindInvalidAmount},
}

// KindOf 将错误归类；nil 返回 KindNone，无法识别的错误返回 KindOther
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindOther
}
