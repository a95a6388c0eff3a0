package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/betbot/tradersim/internal/console"
	"github.com/betbot/tradersim/internal/dashboard"
	"github.com/betbot/tradersim/internal/domain"
	"github.com/betbot/tradersim/internal/services"
	"github.com/betbot/tradersim/pkg/config"
	"github.com/betbot/tradersim/pkg/logger"
	"github.com/betbot/tradersim/pkg/shutdown"
)

const shutdownTimeout = 3 * time.Second

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("TRADERSIM_CONFIG"), "配置文件路径（支持 .yaml, .yml, .json）")
	useTUI := flag.Bool("tui", false, "使用全屏终端界面")
	seed := flag.Uint64("seed", 0, "随机种子（0 表示使用配置或时间）")
	logLevel := flag.String("log-level", "", "日志级别: debug, info, warn, error")
	logFile := flag.String("log-file", "", "日志文件路径")
	logConsole := flag.Bool("log-console", false, "同时把日志输出到终端")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg = cfg.WithSeed(*seed)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
		Console:    cfg.Log.Console || *logConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exits := shutdown.NewManager()
	exits.OnShutdown("log-file", func(context.Context) error { return logger.Close() })

	if *useTUI && !term.IsTerminal(int(os.Stdin.Fd())) {
		logrus.Warnf("标准输入不是终端，改用行模式")
		*useTUI = false
	}

	if *useTUI {
		err = runTUI(ctx, cfg, exits)
	} else {
		err = runConsole(ctx, cfg, exits)
	}

	code := 0
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
	case errors.Is(err, domain.ErrConfiguration):
		fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
		code = 1
	default:
		logrus.Errorf("游戏异常退出: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		code = 1
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	exits.Shutdown(shutdownCtx)
	cancel()
	os.Exit(code)
}

// logSummary 退出时记录最终结算
func logSummary(session *services.Session) shutdown.Handler {
	return func(context.Context) error {
		sum := session.Summary()
		logger.WithField("session", session.ID()).Infof("最终结算: turns=%d cash=%s loan=%s net_worth=%s",
			sum.TurnsPlayed, sum.Cash, sum.Loan, sum.NetWorth)
		return nil
	}
}

func runConsole(ctx context.Context, cfg config.GameConfig, exits *shutdown.Manager) error {
	c := console.New(os.Stdin, os.Stdout)
	defer c.Close()
	session, err := services.NewSession(cfg, c)
	if err != nil {
		return err
	}
	exits.OnShutdown("summary", logSummary(session))
	logrus.WithField("session", session.ID()).Infof("行模式启动: seed=%d", cfg.Seed)
	return console.NewGame(session, c).Run(ctx)
}

func runTUI(ctx context.Context, cfg config.GameConfig, exits *shutdown.Manager) error {
	selector := dashboard.NewLineSelector()
	session, err := services.NewSession(cfg, selector)
	if err != nil {
		return err
	}
	exits.OnShutdown("summary", logSummary(session))
	logrus.WithField("session", session.ID()).Infof("界面模式启动: seed=%d", cfg.Seed)
	if err := dashboard.Run(ctx, session, selector); err != nil {
		return err
	}
	fmt.Println(dashboard.RenderSummary(session))
	return nil
}
