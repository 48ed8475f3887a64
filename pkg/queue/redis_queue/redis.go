// Package redis_queue implements queues as Redis lists: producers LPUSH, consumers BRPOP.
// Package redis_queue 使用 Redis list 实现队列：生产者 LPUSH，消费者 BRPOP
package redis_queue

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Queue Redis list 队列
type Queue struct {
	db *redis.Client
}

// NewQueue returns a configured Queue. The connection is verified lazily by Ping.
// NewQueue 创建队列客户端，连接在 Ping 时校验
func NewQueue(conf *Config) (*Queue, error) {
	if conf.Addr == "" {
		return nil, errors.New("redis_queue: addr is required")
	}
	return &Queue{
		db: redis.NewClient(&redis.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
			DB:       conf.DB,
		}),
	}, nil
}

// Enqueue adds a FIFO element
// Enqueue 追加一个 FIFO 元素
func (q *Queue) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	if err := q.db.LPush(ctx, queueName, payload).Err(); err != nil {
		return errors.Wrap(err, "redis_queue: enqueue")
	}
	return nil
}

// Dequeue blocks up to timeout for the oldest element; it returns (nil, nil) on timeout.
// Dequeue 阻塞等待最早的元素，超时返回 (nil, nil)
func (q *Queue) Dequeue(ctx context.Context, queueName string, timeout time.Duration) ([]byte, error) {
	res, err := q.db.BRPop(ctx, timeout, queueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis_queue: dequeue")
	}
	// res = [key, value]
	return []byte(res[1]), nil
}

// Len 返回队列长度
func (q *Queue) Len(ctx context.Context, queueName string) (int64, error) {
	n, err := q.db.LLen(ctx, queueName).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis_queue: len")
	}
	return n, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	if err := q.db.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis_queue: ping")
	}
	return nil
}

// Close closes a redis client
func (q *Queue) Close() error {
	return q.db.Close()
}
