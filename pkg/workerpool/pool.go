// Package workerpool bounds the number of goroutines performing blocking backend I/O.
// Package workerpool 提供固定数量的 worker，用于限制后端阻塞 I/O 的并发数
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满（仅 TrySubmit 返回）
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 32
	MaxWorkers int `yaml:"max-workers" default:"32"`
	// QueueSize 任务队列大小，默认 256
	QueueSize int `yaml:"queue-size" default:"256"`
	// WarningPercent 告警阈值百分比，默认 0.8
	WarningPercent float64 `yaml:"warning-percent" default:"0.8"`
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool runs submitted functions on a fixed set of workers.
// Pool 在固定数量的 worker 上执行提交的函数
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh   chan task
	workerWg sync.WaitGroup

	activeCount atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建新的 Worker Pool，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := Config{MaxWorkers: 32, QueueSize: 256, WarningPercent: 0.8}
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
		if cfg.WarningPercent > 0 && cfg.WarningPercent <= 1 {
			c.WarningPercent = cfg.WarningPercent
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		taskCh: make(chan task, c.QueueSize),
	}

	for i := 0; i < c.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for t := range p.taskCh {
		p.execute(t)
	}
}

func (p *Pool) execute(t task) {
	active := p.activeCount.Add(1)
	defer p.activeCount.Add(-1)

	if threshold := int64(float64(p.config.MaxWorkers) * p.config.WarningPercent); active >= threshold {
		p.logger.Warn("worker pool approaching capacity",
			zap.Int64("activeCount", active),
			zap.Int("maxWorkers", p.config.MaxWorkers))
	}

	// 调用方已放弃的任务不再执行
	// tasks whose caller already gave up are skipped
	var err error
	if err = t.ctx.Err(); err == nil {
		err = t.fn(t.ctx)
	}
	t.done <- err
}

// Submit enqueues fn and waits for its result. It blocks while the queue is full
// and returns ctx.Err() if the caller is cancelled first.
// Submit 提交任务并等待结果，队列满时阻塞，调用方取消时返回 ctx.Err()
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	t := task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrWorkerPoolClosed
	}
	select {
	case p.taskCh <- t:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit 非阻塞提交任务，队列满时返回 ErrWorkerPoolFull
func (p *Pool) TrySubmit(ctx context.Context, fn func(context.Context) error) error {
	t := task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.taskCh <- t:
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// ActiveCount 返回当前活跃任务数
func (p *Pool) ActiveCount() int64 {
	return p.activeCount.Load()
}

// QueuedCount 返回当前队列中等待的任务数
func (p *Pool) QueuedCount() int {
	return len(p.taskCh)
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to expire.
// Shutdown 停止接收新任务并等待已排队任务完成
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.taskCh)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int("queuedCount", len(p.taskCh)))
		return ctx.Err()
	}
}
