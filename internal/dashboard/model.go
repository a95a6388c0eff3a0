package dashboard

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/betbot/tradersim/internal/commands"
	"github.com/betbot/tradersim/internal/services"
)

var modelLog = logrus.WithField("module", "dashboard.model")

// LineSelector 把界面上输入的一行作为目的地交给会话
type LineSelector struct {
	line string
}

// NewLineSelector 创建选择器
func NewLineSelector() *LineSelector { return &LineSelector{} }

// Set 设置下一次返回的目的地
func (l *LineSelector) Set(line string) { l.line = line }

// RequestDestination 实现 ports.DestinationSelector
func (l *LineSelector) RequestDestination(ctx context.Context, _ []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return l.line, nil
}

type inputMode int

const (
	modeTravel  inputMode = iota // 等待目的地
	modeCommand                  // 等待命令
	modeOver                     // 已结束，任意键退出
)

// Model Bubble Tea model
type Model struct {
	ctx      context.Context
	session  *services.Session
	selector *LineSelector

	mode       inputMode
	pendingEnd bool // 目的地输入后需要完成 end 命令
	input      []rune
	message    string
	quitting   bool
}

// NewModel 创建界面模型；会话必须使用同一个 LineSelector 构建
func NewModel(ctx context.Context, session *services.Session, selector *LineSelector) Model {
	m := Model{ctx: ctx, session: session, selector: selector, mode: modeTravel}
	if session.IsOver() {
		m.mode = modeOver
	} else if session.CurrentMarket() != nil {
		m.mode = modeCommand
	}
	return m
}

// Init 初始化
func (m Model) Init() tea.Cmd {
	return nil
}

// Update 处理消息
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		m.quitting = true
		return m, tea.Quit
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.mode == modeOver {
		m.quitting = true
		return m, tea.Quit
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		line := string(m.input)
		m.input = m.input[:0]
		return m.submit(line)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeTravel:
		return m.submitDestination(line)
	case modeCommand:
		return m.submitCommand(line)
	}
	return m, nil
}

func (m Model) submitDestination(line string) (tea.Model, tea.Cmd) {
	m.selector.Set(line)
	var err error
	switch {
	case m.pendingEnd:
		res := commands.Execute(m.ctx, m.session, commands.Command{Verb: commands.VerbEnd, Raw: "end"})
		commands.LogResult(m.session, res)
		err = res.Err
	case m.session.Phase() == services.PhaseNotStarted:
		err = m.session.Start(m.ctx)
	default:
		err = m.session.Travel(m.ctx)
	}
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.pendingEnd = false
	m.setMessage("")
	if m.session.IsOver() {
		m.mode = modeOver
		modelLog.Infof("游戏结束: session=%s", m.session.ID())
		return m, nil
	}
	m.mode = modeCommand
	return m, nil
}

func (m Model) submitCommand(line string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(line)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	switch cmd.Verb {
	case commands.VerbQuit:
		m.quitting = true
		return m, tea.Quit
	case commands.VerbHelp:
		m.setMessage(commands.Usage)
		return m, nil
	case commands.VerbEnd:
		// 先收集目的地，再执行 end
		m.pendingEnd = true
		m.mode = modeTravel
		m.setMessage("")
		return m, nil
	}
	res := commands.Execute(m.ctx, m.session, cmd)
	commands.LogResult(m.session, res)
	if !res.OK() {
		m.setError(res.Err)
		return m, nil
	}
	m.setMessage("OK: " + strings.TrimSpace(line))
	return m, nil
}

func (m *Model) setError(err error) {
	if errors.Is(err, context.Canceled) {
		m.message = "cancelled"
		return
	}
	m.message = RenderError(err)
}

func (m *Model) setMessage(msg string) {
	m.message = msg
}

// View 渲染
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sections []string
	switch m.mode {
	case modeOver:
		sections = append(sections, RenderSummary(m.session), dimStyle.Render("press any key to exit"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case modeTravel:
		if m.session.CurrentMarket() != nil {
			sections = append(sections, RenderBoard(m.session), "")
		}
		sections = append(sections, RenderLocations(m.session.MarketNames()),
			"Enter the location to travel to: "+string(m.input)+"█")
	case modeCommand:
		sections = append(sections, RenderBoard(m.session), "",
			titleStyle.Render("**** Input *******************"),
			"Enter command: "+string(m.input)+"█")
	}
	if m.message != "" {
		sections = append(sections, "", m.message)
	}
	sections = append(sections, dimStyle.Render("esc/ctrl+c to quit · type 'help' for commands"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run 启动全屏界面
func Run(ctx context.Context, session *services.Session, selector *LineSelector) error {
	p := tea.NewProgram(NewModel(ctx, session, selector), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
