package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/betbot/tradersim/internal/services"
)

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	cashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // 绿色

	loanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")) // 红色

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// money 金额统一保留两位小数
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderStatus 现金/贷款/剩余回合
func RenderStatus(s *services.Session) string {
	acc := s.Account()
	market := "-"
	if m := s.CurrentMarket(); m != nil {
		market = m.Name
	}
	line := fmt.Sprintf("%s %s   %s %s   Turns left: %d   Location: %s",
		titleStyle.Render("Cash:"), cashStyle.Render(money(acc.Cash)),
		titleStyle.Render("Loan:"), loanStyle.Render(money(acc.Loan)),
		s.RemainingTurns(), market)
	return line
}

// RenderInventory 持仓表（商品/数量/平均成本）
func RenderInventory(s *services.Session) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-10s %8s %12s", "Item", "Qty", "Price")))
	for _, h := range s.Account().Ledger().Entries() {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-10s %8d %12s", h.Commodity.Label, h.Quantity, money(h.AverageCost)))
	}
	return borderStyle.Render(b.String())
}

// RenderPriceList 当前市场价目表
func RenderPriceList(s *services.Session) string {
	m := s.CurrentMarket()
	if m == nil {
		return borderStyle.Render(dimStyle.Render("No market selected yet"))
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-10s %-10s %12s", "Item", "Code", "Price")))
	for _, q := range m.Quotes() {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-10s %-10s %12s", q.Commodity.Label, q.Commodity.ID, money(q.Price)))
	}
	return borderStyle.Render(b.String())
}

// RenderLocations 目的地列表（序号 - 名称）
func RenderLocations(names []string) string {
	lines := make([]string, len(names))
	for ix, name := range names {
		lines[ix] = fmt.Sprintf("%d - %s", ix, name)
	}
	return strings.Join(lines, "\n")
}

// RenderBoard 完整面板
func RenderBoard(s *services.Session) string {
	header := headerStyle.Render("TRADER SIM")
	tables := lipgloss.JoinHorizontal(lipgloss.Top, RenderInventory(s), " ", RenderPriceList(s))
	return lipgloss.JoinVertical(lipgloss.Left, header, RenderStatus(s), "", tables)
}

// RenderSummary 结算信息
func RenderSummary(s *services.Session) string {
	sum := s.Summary()
	lines := []string{
		headerStyle.Render("****** End Of Game *******"),
		fmt.Sprintf("Turns played:   %d/%d", sum.TurnsPlayed, s.MaxTurns()),
		fmt.Sprintf("Cash:           %s", money(sum.Cash)),
		fmt.Sprintf("Loan:           %s", money(sum.Loan)),
		fmt.Sprintf("Holdings value: %s", money(sum.HoldingsValue)),
		titleStyle.Render(fmt.Sprintf("Net worth:      %s", money(sum.NetWorth))),
	}
	return strings.Join(lines, "\n")
}

// RenderError 错误提示
func RenderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("Invalid Input: %v", err))
}
