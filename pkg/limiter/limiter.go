// Package limiter 基于令牌桶的接口限流
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 路由模式，与 gin FullPath 一致，如 /notes/:noteId/attachmentzipfiles
	Key string
	// FillInterval 放入令牌的间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}

// Limiter 按路由和客户端 IP 分桶
type Limiter struct {
	mu      sync.RWMutex
	rules   []BucketRule
	buckets map[string]*ratelimit.Bucket
}

// NewMethodLimiter 创建按路由限流的限流器
func NewMethodLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*ratelimit.Bucket)}
}

// Key 限流键：方法 + 路由规则 + 客户端 IP，未命中规则返回空
func (l *Limiter) Key(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rule := range l.rules {
		if route == rule.Key {
			return c.Request.Method + " " + rule.Key + "|" + c.ClientIP()
		}
	}
	return ""
}

// GetBucket 获取（必要时创建）令牌桶
func (l *Limiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if key == "" {
		return nil, false
	}
	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return bucket, true
	}

	rule, ok := l.ruleFor(key)
	if !ok {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if bucket, ok = l.buckets[key]; ok {
		return bucket, true
	}
	bucket = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
	l.buckets[key] = bucket
	return bucket, true
}

// AddBuckets 添加限流规则
func (l *Limiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		if rule.Capacity <= 0 || rule.Quantum <= 0 || rule.FillInterval <= 0 {
			continue
		}
		l.rules = append(l.rules, rule)
	}
	return l
}

func (l *Limiter) ruleFor(key string) (BucketRule, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rule := range l.rules {
		if strings.Contains(key, " "+rule.Key+"|") {
			return rule, true
		}
	}
	return BucketRule{}, false
}

var _ Face = (*Limiter)(nil)
