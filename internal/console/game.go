package console

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/betbot/tradersim/internal/commands"
	"github.com/betbot/tradersim/internal/dashboard"
	"github.com/betbot/tradersim/internal/ports"
	"github.com/betbot/tradersim/internal/services"
	"github.com/betbot/tradersim/pkg/logger"
)

// Game 行模式游戏循环
type Game struct {
	session *services.Session
	console *Console
	source  ports.CommandSource
}

// NewGame 创建游戏循环；会话应以同一个 Console 作为目的地选择器
func NewGame(session *services.Session, c *Console) *Game {
	return &Game{session: session, console: c, source: c}
}

// fatal 输入流结束或上下文取消，无法继续提示
func fatal(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Run 运行到回合用尽、玩家退出或输入结束
func (g *Game) Run(ctx context.Context) error {
	s := g.session
	log := logger.WithField("session", s.ID())
	log.Infof("开局: markets=%d turns=%d/%d", len(s.Markets()), s.RemainingTurns(), s.MaxTurns())

	for s.CurrentMarket() == nil {
		var err error
		if s.Phase() == services.PhaseNotStarted {
			err = s.Start(ctx)
		} else {
			err = s.Travel(ctx)
		}
		if err == nil {
			break
		}
		if fatal(err) {
			return err
		}
		g.console.Println(dashboard.RenderError(err))
	}

	for !s.IsOver() {
		g.console.Println()
		g.console.Println(dashboard.RenderBoard(s))
		g.console.Println()
		quit, err := g.prompt(ctx)
		if err != nil {
			return err
		}
		if quit {
			log.Infof("玩家退出: turns_played=%d", s.TurnsPlayed())
			break
		}
	}

	g.console.Println()
	g.console.Println(dashboard.RenderSummary(s))
	sum := s.Summary()
	log.Infof("游戏结束: net_worth=%s cash=%s loan=%s", sum.NetWorth, sum.Cash, sum.Loan)
	return nil
}

// prompt 反复读取命令直到有一条成功
func (g *Game) prompt(ctx context.Context) (bool, error) {
	for {
		line, err := g.source.RequestCommand(ctx)
		if err != nil {
			return false, err
		}
		res := commands.Run(ctx, g.session, line)
		commands.LogResult(g.session, res)
		switch {
		case res.Quit():
			return true, nil
		case res.OK() && res.Command.Verb == commands.VerbHelp:
			g.console.Println(commands.Usage)
		case res.OK():
			return false, nil
		case fatal(res.Err):
			return false, res.Err
		default:
			g.console.Println(dashboard.RenderError(res.Err))
		}
	}
}
