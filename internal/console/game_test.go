package console

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/tradersim/internal/services"
	"github.com/betbot/tradersim/pkg/config"
)

func newGame(t *testing.T, script string) (*Game, *services.Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	c := New(strings.NewReader(script), out)
	t.Cleanup(func() { c.Close() })
	cfg := config.New(
		[]config.CommoditySpec{{ID: "wood", Label: "Wood", LowerRange: 100, UpperRange: 100}},
		[]string{"Mumbai", "Delhi"},
		decimal.NewFromInt(2000), decimal.NewFromInt(5000), decimal.NewFromInt(10), 2,
	)
	s, err := services.NewSession(cfg, c, services.WithRand(rand.New(rand.NewPCG(5, 6))))
	require.NoError(t, err)
	return NewGame(s, c), s, out
}

func TestGame_PlaysFullGame(t *testing.T) {
	script := strings.Join([]string{
		"Paris",      // 无效目的地，重新输入
		"0",          // Mumbai
		"buy wood 5", // 现金 1500
		"help",
		"foo",
		"end",
		"1", // Delhi，贷款 5500
		"repay 500",
		"end",
		"0", // 贷款 5500
	}, "\n") + "\n"

	g, s, out := newGame(t, script)
	require.NoError(t, g.Run(context.Background()))

	assert.True(t, s.IsOver())
	assert.Equal(t, 2, s.TurnsPlayed())
	assert.Equal(t, "Mumbai", s.CurrentMarket().Name)
	assert.True(t, s.Account().Cash.Equal(decimal.NewFromInt(1000)), "cash got=%s", s.Account().Cash)
	assert.True(t, s.Account().Loan.Equal(decimal.NewFromInt(5500)), "loan got=%s", s.Account().Loan)

	text := out.String()
	assert.Contains(t, text, "0 - Mumbai")
	assert.Contains(t, text, "Invalid Input")
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, "End Of Game")
}

func TestGame_QuitPrintsSummary(t *testing.T) {
	g, s, out := newGame(t, "Delhi\nquit\n")
	require.NoError(t, g.Run(context.Background()))
	assert.False(t, s.IsOver())
	assert.Equal(t, 0, s.TurnsPlayed())
	assert.Contains(t, out.String(), "End Of Game")
}

func TestGame_InputEndsMidGame(t *testing.T) {
	g, _, _ := newGame(t, "0\nbuy wood 1\n")
	err := g.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestGame_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	out := &bytes.Buffer{}
	c := New(pr, out)
	defer c.Close()
	cfg := config.Default().WithSeed(1)
	s, err := services.NewSession(cfg, c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewGame(s, c).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
