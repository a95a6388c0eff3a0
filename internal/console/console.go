package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/betbot/tradersim/internal/dashboard"
)

// Console 基于行输入的终端，实现 ports.DestinationSelector 与 ports.CommandSource
type Console struct {
	out     io.Writer
	lines   chan string
	err     error         // 输入结束原因，lines 关闭前写入
	done    chan struct{} // Close 后读取 goroutine 停止投递
	stopped chan struct{} // 读取 goroutine 已退出
	once    sync.Once
}

// New 创建终端；读取在独立 goroutine 中进行，以便响应 ctx 取消
func New(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out:     out,
		lines:   make(chan string),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.readLoop(in)
	return c
}

// readLoop 输入结束后关闭 lines 并退出；Close 后未读的行被丢弃
func (c *Console) readLoop(in io.Reader) {
	defer close(c.stopped)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
	c.err = scanner.Err()
	if c.err == nil {
		c.err = io.EOF
	}
	close(c.lines)
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", io.EOF
	case line, ok := <-c.lines:
		if !ok {
			return "", c.err
		}
		return line, nil
	}
}

// Close 停止读取；阻塞在底层 Read 上的读取要等下一行或输入结束才退出
func (c *Console) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Printf 输出到终端
func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// Println 输出一行
func (c *Console) Println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

// RequestDestination 打印地点列表并读取一行
func (c *Console) RequestDestination(ctx context.Context, names []string) (string, error) {
	c.Println(dashboard.RenderLocations(names))
	c.Printf("Enter the location to travel to: ")
	return c.readLine(ctx)
}

// RequestCommand 读取一条命令
func (c *Console) RequestCommand(ctx context.Context) (string, error) {
	c.Println("**** Input *******************")
	c.Printf("Enter command: ")
	return c.readLine(ctx)
}
