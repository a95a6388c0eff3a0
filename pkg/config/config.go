package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CommoditySpec 商品配置
type CommoditySpec struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label" json:"label"`
	LowerRange int64  `yaml:"lower_range" json:"lower_range"`
	UpperRange int64  `yaml:"upper_range" json:"upper_range"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string // 日志级别: debug, info, warn, error
	File    string // 日志文件路径（为空则不写文件）
	Console bool   // 是否同时输出到终端
}

// GameConfig 游戏配置（加载后只读，按值传递）
type GameConfig struct {
	commodities  []CommoditySpec
	locations    []string
	StartingCash decimal.Decimal // 初始现金
	StartingLoan decimal.Decimal // 初始贷款
	LoanRate     decimal.Decimal // 每回合利率（百分比）
	MaxTurns     int             // 最大回合数
	Seed         uint64          // 随机种子，0 表示按时间取种
	Log          LogConfig
}

// ConfigFile 配置文件结构（用于 YAML/JSON 解析）
type ConfigFile struct {
	Commodities  []CommoditySpec `yaml:"commodities" json:"commodities"`
	Locations    []string        `yaml:"locations" json:"locations"`
	StartingCash *int64          `yaml:"starting_cash" json:"starting_cash"`
	StartingLoan *int64          `yaml:"starting_loan" json:"starting_loan"`
	LoanRate     *float64        `yaml:"loan_rate" json:"loan_rate"`
	MaxTurns     *int            `yaml:"max_turns" json:"max_turns"`
	Seed         *uint64         `yaml:"seed" json:"seed"`
	LogLevel     string          `yaml:"log_level" json:"log_level"`
	LogFile      string          `yaml:"log_file" json:"log_file"`
	LogConsole   bool            `yaml:"log_console" json:"log_console"`
}

// 默认值
var (
	DefaultCommodities = []CommoditySpec{
		{ID: "arms", Label: "Arms", LowerRange: 18000, UpperRange: 30000},
		{ID: "diamonds", Label: "Opium", LowerRange: 8000, UpperRange: 20000},
		{ID: "gold", Label: "Gold", LowerRange: 4000, UpperRange: 12000},
		{ID: "iron", Label: "Iron", LowerRange: 2000, UpperRange: 8000},
		{ID: "coal", Label: "Stone", LowerRange: 500, UpperRange: 4000},
		{ID: "wood", Label: "Wood", LowerRange: 100, UpperRange: 800},
		{ID: "food", Label: "Food", LowerRange: 15, UpperRange: 80},
	}
	DefaultLocations = []string{
		"Mumbai",
		"Delhi",
		"Amritsar",
		"Hyderabad",
		"Jholpur",
		"Wazzeypur",
	}
)

const (
	DefaultStartingCash = 2000
	DefaultStartingLoan = 5000
	DefaultLoanRate     = 10
	DefaultMaxTurns     = 2
	DefaultLogFile      = "logs/tradersim.log"
)

// Default 返回内置默认配置
func Default() GameConfig {
	return GameConfig{
		commodities:  append([]CommoditySpec(nil), DefaultCommodities...),
		locations:    append([]string(nil), DefaultLocations...),
		StartingCash: decimal.NewFromInt(DefaultStartingCash),
		StartingLoan: decimal.NewFromInt(DefaultStartingLoan),
		LoanRate:     decimal.NewFromInt(DefaultLoanRate),
		MaxTurns:     DefaultMaxTurns,
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogFile,
		},
	}
}

// New 以显式参数构建配置（测试与嵌入使用）
func New(commodities []CommoditySpec, locations []string, cash, loan, rate decimal.Decimal, maxTurns int) GameConfig {
	cfg := Default()
	cfg.commodities = append([]CommoditySpec(nil), commodities...)
	cfg.locations = append([]string(nil), locations...)
	cfg.StartingCash = cash
	cfg.StartingLoan = loan
	cfg.LoanRate = rate
	cfg.MaxTurns = maxTurns
	return cfg
}

// Commodities 返回商品配置副本
func (c GameConfig) Commodities() []CommoditySpec {
	return append([]CommoditySpec(nil), c.commodities...)
}

// Locations 返回地点列表副本
func (c GameConfig) Locations() []string {
	return append([]string(nil), c.locations...)
}

// WithSeed 返回替换了随机种子的配置副本
func (c GameConfig) WithSeed(seed uint64) GameConfig {
	c.Seed = seed
	return c
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load(filePath string) (GameConfig, error) {
	cfg := Default()

	if filePath != "" {
		configFile, err := loadConfigFile(filePath)
		if err != nil {
			return GameConfig{}, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		cfg = merge(cfg, configFile)
	}

	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// loadConfigFile 按扩展名解析 YAML/JSON
func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var configFile ConfigFile
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	return &configFile, nil
}

// merge 用配置文件中出现的字段覆盖默认值
func merge(cfg GameConfig, cf *ConfigFile) GameConfig {
	if len(cf.Commodities) > 0 {
		cfg.commodities = append([]CommoditySpec(nil), cf.Commodities...)
	}
	if len(cf.Locations) > 0 {
		cfg.locations = append([]string(nil), cf.Locations...)
	}
	if cf.StartingCash != nil {
		cfg.StartingCash = decimal.NewFromInt(*cf.StartingCash)
	}
	if cf.StartingLoan != nil {
		cfg.StartingLoan = decimal.NewFromInt(*cf.StartingLoan)
	}
	if cf.LoanRate != nil {
		cfg.LoanRate = decimal.NewFromFloat(*cf.LoanRate)
	}
	if cf.MaxTurns != nil {
		cfg.MaxTurns = *cf.MaxTurns
	}
	if cf.Seed != nil {
		cfg.Seed = *cf.Seed
	}
	if cf.LogLevel != "" {
		cfg.Log.Level = cf.LogLevel
	}
	if cf.LogFile != "" {
		cfg.Log.File = cf.LogFile
	}
	cfg.Log.Console = cf.LogConsole
	return cfg
}

// applyEnv 环境变量覆盖
func applyEnv(cfg GameConfig) GameConfig {
	cfg.StartingCash = parseDecimalEnv("TRADERSIM_STARTING_CASH", cfg.StartingCash)
	cfg.StartingLoan = parseDecimalEnv("TRADERSIM_STARTING_LOAN", cfg.StartingLoan)
	cfg.LoanRate = parseDecimalEnv("TRADERSIM_LOAN_RATE", cfg.LoanRate)
	cfg.MaxTurns = parseIntEnv("TRADERSIM_MAX_TURNS", cfg.MaxTurns)
	cfg.Seed = parseUintEnv("TRADERSIM_SEED", cfg.Seed)
	cfg.Log.Level = getEnv("TRADERSIM_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("TRADERSIM_LOG_FILE", cfg.Log.File)
	return cfg
}

// Validate 验证配置
// 商品价格区间由 domain.NewCommodity 校验
func (c GameConfig) Validate() error {
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns 必须大于 0: %d", c.MaxTurns)
	}
	if len(c.locations) == 0 {
		return fmt.Errorf("至少需要配置一个地点")
	}
	if len(c.commodities) == 0 {
		return fmt.Errorf("至少需要配置一个商品")
	}
	seen := make(map[string]bool, len(c.locations))
	for _, name := range c.locations {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("地点名称不能为空")
		}
		if seen[name] {
			return fmt.Errorf("地点名称重复: %s", name)
		}
		seen[name] = true
	}
	ids := make(map[string]bool, len(c.commodities))
	for _, spec := range c.commodities {
		if ids[spec.ID] {
			return fmt.Errorf("商品代码重复: %s", spec.ID)
		}
		ids[spec.ID] = true
	}
	if c.StartingCash.IsNegative() {
		return fmt.Errorf("starting_cash 不能为负数: %s", c.StartingCash)
	}
	if c.StartingLoan.IsNegative() {
		return fmt.Errorf("starting_loan 不能为负数: %s", c.StartingLoan)
	}
	if c.LoanRate.IsNegative() {
		return fmt.Errorf("loan_rate 不能为负数: %s", c.LoanRate)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseUintEnv(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
