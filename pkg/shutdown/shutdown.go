package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/tradersim/pkg/logger"
)

// Handler 退出回调
type Handler func(ctx context.Context) error

type namedHandler struct {
	name    string
	handler Handler
}

// Manager 退出管理器：按注册的逆序执行回调（后注册的先执行）
type Manager struct {
	mu        sync.Mutex
	callbacks []namedHandler
	done      bool
}

// NewManager 创建退出管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册退出回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, namedHandler{name: name, handler: handler})
}

// Shutdown 执行全部回调，只生效一次
// 单个回调失败不影响后续回调；ctx 超时后跳过剩余回调，返回执行失败的个数
func (m *Manager) Shutdown(ctx context.Context) int {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return 0
	}
	m.done = true
	callbacks := m.callbacks
	m.mu.Unlock()

	failed := 0
	for i := len(callbacks) - 1; i >= 0; i-- {
		cb := callbacks[i]
		if err := ctx.Err(); err != nil {
			logger.Warnf("退出超时，跳过剩余 %d 个回调: %v", i+1, err)
			return failed + i + 1
		}
		if err := cb.handler(ctx); err != nil {
			failed++
			logger.Warnf("退出回调失败: %s: %v", cb.name, err)
			continue
		}
		logger.Debugf("退出回调完成: %s", cb.name)
	}
	return failed
}
