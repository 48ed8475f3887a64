// Package memory is an in-process queue for development and tests.
// Package memory 进程内队列，用于开发与测试
package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed 队列已关闭
var ErrClosed = errors.New("memory queue is closed")

// Queue 以队列名分组的进程内 FIFO
type Queue struct {
	mu     sync.Mutex
	items  map[string][][]byte
	closed bool
}

func NewQueue() *Queue {
	return &Queue{items: make(map[string][][]byte)}
}

func (q *Queue) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	q.items[queueName] = append(q.items[queueName], buf)
	return nil
}

// Dequeue 取出最早的元素，队列为空时返回 (nil, false)
func (q *Queue) Dequeue(queueName string) ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items[queueName]
	if len(items) == 0 {
		return nil, false
	}
	q.items[queueName] = items[1:]
	return items[0], true
}

// Len 返回队列长度
func (q *Queue) Len(queueName string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items[queueName])
}

func (q *Queue) Ping(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	return nil
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
