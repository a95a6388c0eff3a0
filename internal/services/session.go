package services

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/tradersim/internal/domain"
	"github.com/betbot/tradersim/internal/ports"
	"github.com/betbot/tradersim/pkg/config"
)

// Phase 回合状态机阶段
type Phase int

const (
	PhaseNotStarted     Phase = iota // 尚未开局
	PhaseAwaitingTravel              // 等待选择目的地
	PhaseInTurn                      // 回合进行中（可交易）
	PhaseEnded                       // 回合用尽
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseAwaitingTravel:
		return "awaiting_travel"
	case PhaseInTurn:
		return "in_turn"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session 游戏会话：编排旅行、交易、计息与回合倒计时
// 单线程使用，不加锁
type Session struct {
	id       string
	catalog  []domain.Commodity
	markets  []*domain.Market
	account  *domain.Account
	current  *domain.Market
	selector ports.DestinationSelector

	maxTurns  int
	elapsed   int
	started   bool
	traveling bool // 正在向选择器请求目的地
}

// Option 会话选项
type Option func(*sessionOptions)

type sessionOptions struct {
	rng *rand.Rand
	id  string
}

// WithRand 注入随机源（测试用）
func WithRand(rng *rand.Rand) Option {
	return func(o *sessionOptions) { o.rng = rng }
}

// WithID 指定会话 ID
func WithID(id string) Option {
	return func(o *sessionOptions) { o.id = id }
}

// NewSession 按配置创建会话；商品区间非法时返回 domain.ErrConfiguration
func NewSession(cfg config.GameConfig, selector ports.DestinationSelector, opts ...Option) (*Session, error) {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if cfg.MaxTurns <= 0 {
		return nil, errors.Wrapf(domain.ErrConfiguration, "max turns must be positive: %d", cfg.MaxTurns)
	}

	catalog, err := buildCatalog(cfg.Commodities())
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "empty commodity catalog")
	}

	locations := cfg.Locations()
	if len(locations) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "no locations configured")
	}
	markets := make([]*domain.Market, 0, len(locations))
	for _, name := range locations {
		m, err := domain.NewMarket(name, catalog, o.rng)
		if err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}

	return &Session{
		id:       o.id,
		catalog:  catalog,
		markets:  markets,
		account:  domain.NewAccount(cfg.StartingCash, cfg.StartingLoan, cfg.LoanRate, catalog),
		selector: selector,
		maxTurns: cfg.MaxTurns,
	}, nil
}

func buildCatalog(specs []config.CommoditySpec) ([]domain.Commodity, error) {
	catalog := make([]domain.Commodity, 0, len(specs))
	for _, s := range specs {
		c, err := domain.NewCommodity(s.ID, s.Label, s.LowerRange, s.UpperRange)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, c)
	}
	return catalog, nil
}

// ID 会话 ID
func (s *Session) ID() string { return s.id }

// Account 玩家账户（只读访问）
func (s *Session) Account() *domain.Account { return s.account }

// CurrentMarket 当前市场，首次旅行前为 nil
func (s *Session) CurrentMarket() *domain.Market { return s.current }

// Markets 全部市场
func (s *Session) Markets() []*domain.Market {
	return append([]*domain.Market(nil), s.markets...)
}

// MarketNames 市场名称列表（与 Markets 顺序一致）
func (s *Session) MarketNames() []string {
	names := make([]string, len(s.markets))
	for i, m := range s.markets {
		names[i] = m.Name
	}
	return names
}

// Catalog 商品目录副本
func (s *Session) Catalog() []domain.Commodity { return domain.CopyCatalog(s.catalog) }

// MaxTurns 最大回合数
func (s *Session) MaxTurns() int { return s.maxTurns }

// RemainingTurns 剩余回合 = max - elapsed，不会为负
func (s *Session) RemainingTurns() int {
	if r := s.maxTurns - s.elapsed; r > 0 {
		return r
	}
	return 0
}

// TurnsPlayed 已完成回合数
func (s *Session) TurnsPlayed() int { return s.elapsed }

// Phase 当前阶段
// 首次到达前以及 Travel/EndTurn 等待选择器返回期间为 PhaseAwaitingTravel
func (s *Session) Phase() Phase {
	switch {
	case s.RemainingTurns() == 0:
		return PhaseEnded
	case !s.started:
		return PhaseNotStarted
	case s.current == nil, s.traveling:
		return PhaseAwaitingTravel
	default:
		return PhaseInTurn
	}
}

// IsOver 游戏是否结束
func (s *Session) IsOver() bool { return s.Phase() == PhaseEnded }

// Start 开局：进入等待旅行阶段并请求第一个目的地
// 选择无效时返回错误，调用方重新调用 Travel
func (s *Session) Start(ctx context.Context) error {
	if s.IsOver() {
		return domain.ErrGameOver
	}
	s.started = true
	return s.Travel(ctx)
}

// Travel 向操作者请求目的地并前往
func (s *Session) Travel(ctx context.Context) error {
	if s.selector == nil {
		return errors.New("no destination selector configured")
	}
	s.traveling = true
	selection, err := s.selector.RequestDestination(ctx, s.MarketNames())
	s.traveling = false
	if err != nil {
		return errors.Wrap(err, "request destination")
	}
	return s.TravelTo(selection)
}

// TravelTo 按序号或名称片段前往市场
// 到达不同市场时刷新其价格；重复选择当前市场不刷新
func (s *Session) TravelTo(selection string) error {
	if s.IsOver() {
		return domain.ErrGameOver
	}
	next, err := s.resolve(selection)
	if err != nil {
		return err
	}
	s.started = true
	if next == s.current {
		return nil
	}
	if err := next.RefreshPrices(); err != nil {
		return err
	}
	s.current = next
	return nil
}

// resolve 纯数字按序号；纯字母按名称子串（区分大小写，多个匹配取最后一个）
func (s *Session) resolve(selection string) (*domain.Market, error) {
	sel := strings.TrimSpace(selection)
	switch {
	case sel == "":
		return nil, errors.Wrap(domain.ErrInvalidSelection, "empty selection")
	case isDigits(sel):
		ix, err := strconv.Atoi(sel)
		if err != nil || ix >= len(s.markets) {
			return nil, errors.Wrapf(domain.ErrInvalidSelection, "no location at index %s", sel)
		}
		return s.markets[ix], nil
	case isLetters(sel):
		var found *domain.Market
		for _, m := range s.markets {
			if strings.Contains(m.Name, sel) {
				found = m
			}
		}
		if found == nil {
			return nil, errors.Wrapf(domain.ErrInvalidSelection, "no location matches %q", sel)
		}
		return found, nil
	default:
		return nil, errors.Wrapf(domain.ErrInvalidSelection, "%q is neither an index nor a name", sel)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func (s *Session) tradable() (*domain.Market, error) {
	if s.IsOver() {
		return nil, domain.ErrGameOver
	}
	if s.current == nil {
		return nil, domain.ErrNoCurrentMarket
	}
	return s.current, nil
}

// Buy 以当前市场价格买入
func (s *Session) Buy(id string, quantity int64) error {
	m, err := s.tradable()
	if err != nil {
		return err
	}
	price, err := m.PriceOf(id)
	if err != nil {
		return err
	}
	return s.account.Buy(id, price, quantity)
}

// Sell 以当前市场价格卖出
func (s *Session) Sell(id string, quantity int64) error {
	m, err := s.tradable()
	if err != nil {
		return err
	}
	price, err := m.PriceOf(id)
	if err != nil {
		return err
	}
	return s.account.Sell(id, price, quantity)
}

// Repay 偿还贷款，返回实际还款额
func (s *Session) Repay(amount decimal.Decimal) (decimal.Decimal, error) {
	if s.IsOver() {
		return decimal.Zero, domain.ErrGameOver
	}
	return s.account.Repay(amount)
}

// EndTurn 结束回合：请求目的地 -> 计息 -> 剩余回合减一
// 旅行失败时不计息、不扣回合，调用方重新发起
func (s *Session) EndTurn(ctx context.Context) error {
	if s.RemainingTurns() == 0 {
		return errors.Wrap(domain.ErrGameOver, "no turns remaining")
	}
	if err := s.Travel(ctx); err != nil {
		return err
	}
	s.account.AccrueInterest()
	s.elapsed++
	return nil
}

// Summary 结算信息
type Summary struct {
	Cash          decimal.Decimal
	Loan          decimal.Decimal
	HoldingsValue decimal.Decimal
	NetWorth      decimal.Decimal
	TurnsPlayed   int
	Market        string
}

// Summary 按当前市场价格估值；尚未到达市场时按持仓成本估值
func (s *Session) Summary() Summary {
	var prices map[string]decimal.Decimal
	name := ""
	if s.current != nil {
		prices = s.current.Prices()
		name = s.current.Name
	}
	holdings := s.account.Ledger().MarketValue(prices)
	return Summary{
		Cash:          s.account.Cash,
		Loan:          s.account.Loan,
		HoldingsValue: holdings,
		NetWorth:      s.account.NetWorth(prices),
		TurnsPlayed:   s.elapsed,
		Market:        name,
	}
}
