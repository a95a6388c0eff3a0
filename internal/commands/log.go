package commands

import (
	"github.com/sirupsen/logrus"

	"github.com/betbot/tradersim/internal/services"
	"github.com/betbot/tradersim/pkg/logger"
)

// LogResult 记录命令执行结果
func LogResult(s *services.Session, r Result) {
	entry := logger.WithFields(logrus.Fields{
		"session": s.ID(),
		"turn":    s.TurnsPlayed() + 1,
		"cmd":     string(r.Command.Verb),
		"kind":    r.Kind.String(),
	})
	if m := s.CurrentMarket(); m != nil {
		entry = entry.WithField("market", m.Name)
	}
	if r.OK() {
		entry.WithFields(logrus.Fields{
			"cash": s.Account().Cash.String(),
			"loan": s.Account().Loan.String(),
		}).Debugf("命令执行成功: %s", r.Command.Raw)
		return
	}
	entry.Infof("命令被拒绝: %q err=%v", r.Command.Raw, r.Err)
}
