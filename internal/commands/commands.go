package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/tradersim/internal/domain"
	"github.com/betbot/tradersim/internal/services"
)

// Verb 命令类型
type Verb string

const (
	VerbBuy   Verb = "buy"
	VerbSell  Verb = "sell"
	VerbRepay Verb = "repay"
	VerbEnd   Verb = "end"
	VerbHelp  Verb = "help"
	VerbQuit  Verb = "quit"
)

var (
	// ErrUnknownCommand 无法识别的命令
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformedCommand 参数个数或格式错误
	ErrMalformedCommand = errors.New("malformed command")
)

// Usage 命令帮助
const Usage = `Commands:
  buy|b <item> <qty>    buy at the current market price
  sell|s <item> <qty>   sell at the current market price
  repay|r <amount>      repay part of the loan
  end|e                 travel and end the turn
  help|h                show this help
  quit|q                leave the game`

// Command 解析后的命令
type Command struct {
	Verb      Verb
	Commodity string
	Quantity  int64
	Amount    decimal.Decimal
	Raw       string
}

// ParseVerb 解析命令字（支持单字母别名）
func ParseVerb(v string) (Verb, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "b", "buy":
		return VerbBuy, nil
	case "s", "sell":
		return VerbSell, nil
	case "r", "repay":
		return VerbRepay, nil
	case "e", "end":
		return VerbEnd, nil
	case "h", "help", "?":
		return VerbHelp, nil
	case "q", "quit", "exit":
		return VerbQuit, nil
	default:
		return "", errors.Wrapf(ErrUnknownCommand, "%q", v)
	}
}

// Parse 解析一行输入
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.Wrap(ErrMalformedCommand, "empty input")
	}
	verb, err := ParseVerb(fields[0])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Verb: verb, Raw: line}
	args := fields[1:]

	switch verb {
	case VerbBuy, VerbSell:
		if len(args) != 2 {
			return Command{}, errors.Wrapf(ErrMalformedCommand, "usage: %s <item> <qty>", verb)
		}
		qty, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return Command{}, errors.Wrapf(ErrMalformedCommand, "quantity %q is not an integer", args[1])
		}
		cmd.Commodity = args[0]
		cmd.Quantity = qty
	case VerbRepay:
		if len(args) != 1 {
			return Command{}, errors.Wrap(ErrMalformedCommand, "usage: repay <amount>")
		}
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return Command{}, errors.Wrapf(ErrMalformedCommand, "amount %q is not a number", args[0])
		}
		cmd.Amount = amount
	default:
		if len(args) != 0 {
			return Command{}, errors.Wrapf(ErrMalformedCommand, "%s takes no arguments", verb)
		}
	}
	return cmd, nil
}

// Result 单条命令的执行结果（Ok 或 Err(kind)）
type Result struct {
	Command Command
	Err     error
	Kind    domain.ErrorKind
	Repaid  decimal.Decimal // repay 的实际还款额
}

// OK 是否成功
func (r Result) OK() bool { return r.Err == nil }

// Quit 是否请求退出
func (r Result) Quit() bool { return r.Err == nil && r.Command.Verb == VerbQuit }

func result(cmd Command, err error) Result {
	return Result{Command: cmd, Err: err, Kind: domain.KindOf(err)}
}

// Execute 将命令分派到会话，每条命令对应一次会话调用
func Execute(ctx context.Context, s *services.Session, cmd Command) Result {
	switch cmd.Verb {
	case VerbBuy:
		return result(cmd, s.Buy(cmd.Commodity, cmd.Quantity))
	case VerbSell:
		return result(cmd, s.Sell(cmd.Commodity, cmd.Quantity))
	case VerbRepay:
		repaid, err := s.Repay(cmd.Amount)
		r := result(cmd, err)
		r.Repaid = repaid
		return r
	case VerbEnd:
		return result(cmd, s.EndTurn(ctx))
	case VerbHelp, VerbQuit:
		return result(cmd, nil)
	default:
		return result(cmd, errors.Wrapf(ErrUnknownCommand, "%q", cmd.Verb))
	}
}

// Run 解析并执行一行输入
func Run(ctx context.Context, s *services.Session, line string) Result {
	cmd, err := Parse(line)
	if err != nil {
		return result(Command{Raw: line}, err)
	}
	return Execute(ctx, s, cmd)
}
