// Package writequeue serializes operations that share a key.
// Package writequeue 按 key 串行化执行操作，同一 key 的操作按 FIFO 顺序处理
//
// It is used to make the quota admission of a container and the following write one
// critical section, so concurrent uploads cannot overshoot the per-note limit.
// 用于把容器的配额检查与随后的写入合并为一个临界区，避免并发上传超出单笔记上限
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 当 key 的队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 当管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 当操作等待超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个 key 的队列容量
	QueueCapacity int `yaml:"queue-capacity" default:"64"`
	// WriteTimeout 单次操作最长等待时间
	WriteTimeout time.Duration `yaml:"write-timeout" default:"30s"`
	// IdleTimeout 空闲队列回收时间
	IdleTimeout time.Duration `yaml:"idle-timeout" default:"10m"`
}

type writeOp struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

type keyQueue struct {
	key      string
	ch       chan writeOp
	lastUsed time.Time
	done     chan struct{}
}

// Manager owns one FIFO queue and one worker per active key.
// Manager 为每个活跃 key 维护一个 FIFO 队列和一个 worker
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	stopCleanup chan struct{}
	cleanupWg   sync.WaitGroup
}

// New 创建写队列管理器，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := Config{QueueCapacity: 64, WriteTimeout: 30 * time.Second, IdleTimeout: 10 * time.Minute}
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      c,
		logger:      logger,
		queues:      make(map[string]*keyQueue),
		stopCleanup: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	return m
}

// Execute runs fn after every earlier operation submitted for key has finished.
// Execute 在同一 key 之前提交的操作全部完成后执行 fn
func (m *Manager) Execute(ctx context.Context, key string, fn func(context.Context) error) error {
	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	q, ok := m.queues[key]
	if !ok {
		q = &keyQueue{
			key:  key,
			ch:   make(chan writeOp, m.config.QueueCapacity),
			done: make(chan struct{}),
		}
		m.queues[key] = q
		go m.worker(q)
	}
	q.lastUsed = time.Now()
	select {
	case q.ch <- op:
	default:
		m.mu.Unlock()
		return ErrWriteQueueFull
	}
	m.mu.Unlock()

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) worker(q *keyQueue) {
	defer close(q.done)
	for op := range q.ch {
		if err := op.ctx.Err(); err != nil {
			op.result <- err
			continue
		}
		op.result <- op.fn(op.ctx)
	}
	m.logger.Debug("write queue worker stopped", zap.String("key", q.key))
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			m.doCleanup(time.Now())
		}
	}
}

// doCleanup 回收空闲且为空的队列
func (m *Manager) doCleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, q := range m.queues {
		if len(q.ch) == 0 && now.Sub(q.lastUsed) > m.config.IdleTimeout {
			close(q.ch)
			delete(m.queues, key)
		}
	}
}

// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// Shutdown stops accepting work and waits for queued operations to drain.
// Shutdown 停止接收新操作并等待队列中的操作执行完毕
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pending := make([]*keyQueue, 0, len(m.queues))
	for key, q := range m.queues {
		close(q.ch)
		pending = append(pending, q)
		delete(m.queues, key)
	}
	m.mu.Unlock()

	close(m.stopCleanup)

	done := make(chan struct{})
	go func() {
		for _, q := range pending {
			<-q.done
		}
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}
