// Package queue is the message queue gateway used to hand work to background workers.
// Package queue 消息队列网关，用于将任务投递给后台 worker
package queue

import (
	"context"

	"github.com/haierkeys/note-attachment-service/pkg/code"
	"github.com/haierkeys/note-attachment-service/pkg/queue/memory"
	"github.com/haierkeys/note-attachment-service/pkg/queue/redis_queue"
)

type Type = string

const Redis Type = "redis"
const Memory Type = "memory"

// Config 消息队列配置
type Config struct {
	Type Type `yaml:"type" default:"redis"`

	// Redis
	Addr     string `yaml:"addr" default:"127.0.0.1:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// ArchiveQueueName 归档请求队列名称
	ArchiveQueueName string `yaml:"archive-queue-name" default:"attachment-zip-requests"`
}

// Queuer enqueues opaque payloads onto named FIFO queues.
// Queuer 向命名 FIFO 队列投递消息
type Queuer interface {
	// Enqueue appends payload to queueName. Delivery guarantees are the backend's.
	Enqueue(ctx context.Context, queueName string, payload []byte) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Queuer = (*redis_queue.Queue)(nil)
	_ Queuer = (*memory.Queue)(nil)
)

// NewClient 根据配置创建消息队列客户端
func NewClient(config *Config) (Queuer, error) {
	if config == nil {
		return nil, code.ErrorInvalidQueueType
	}
	switch config.Type {
	case Redis:
		return redis_queue.NewQueue(&redis_queue.Config{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
	case Memory:
		return memory.NewQueue(), nil
	}
	return nil, code.ErrorInvalidQueueType
}
