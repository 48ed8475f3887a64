// Package safe_close coordinates graceful shutdown of long running components.
// Package safe_close 协调长生命周期组件的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose fans a single close signal out to every attached component and waits for them.
// SafeClose 将关闭信号广播给所有已挂载组件并等待其退出
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewSafeClose 创建 SafeClose
func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done when it has finished
// shutting down, normally after closeSignal fires.
// Attach 在独立 goroutine 中运行 fn，fn 退出时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeSignal)
}

// SendCloseSignal broadcasts the close signal. Only the first call records err.
// SendCloseSignal 广播关闭信号，仅第一次调用记录错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeSignal)
	})
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 等待所有组件退出，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
