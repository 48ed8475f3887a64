// Package object holds the value types and sentinel errors shared by every storage backend.
// Package object 定义所有存储后端共享的对象类型与哨兵错误
package object

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var (
	// ErrObjectNotFound 对象不存在
	ErrObjectNotFound = errors.New("object not found")
	// ErrContainerNotFound 容器不存在
	ErrContainerNotFound = errors.New("container not found")
)

// Metadata keys written by the gateway itself.
// 网关自身写入的元数据 key
const (
	MetaCreatedAt = "created-at"
	MetaNoteID    = "noteid"
)

// AccessLevel 容器访问级别
type AccessLevel int

const (
	// AccessPrivate 私有，仅服务端可访问
	AccessPrivate AccessLevel = iota
	// AccessPublicRead 公共读
	AccessPublicRead
)

// Info describes one stored object.
// Info 描述一个存储对象
type Info struct {
	Key          string
	ContentType  string
	CreatedAt    time.Time
	LastModified time.Time
	Size         int64
	Metadata     map[string]string
}

// Object is an open object. Callers must close Body.
// Object 为已打开的对象，调用方负责关闭 Body
type Object struct {
	Info
	Body io.ReadCloser
}

// Sidecar is the JSON document kept next to objects on backends without native metadata.
// Sidecar 为不支持原生元数据的后端保存的 JSON 描述文件
type Sidecar struct {
	// Key 原始对象 key，哈希文件名时用于还原
	Key         string            `json:"key,omitempty"`
	ContentType string            `json:"contentType"`
	CreatedAt   time.Time         `json:"createdAt"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// MarshalSidecar 编码 Sidecar
func MarshalSidecar(s *Sidecar) ([]byte, error) {
	return sonic.Marshal(s)
}

// UnmarshalSidecar 解码 Sidecar
func UnmarshalSidecar(data []byte) (*Sidecar, error) {
	s := new(Sidecar)
	if err := sonic.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MergeMetadata returns a copy of base overlaid with extra; keys are lower-cased.
// MergeMetadata 合并元数据，key 统一小写
func MergeMetadata(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[strings.ToLower(k)] = v
	}
	for k, v := range extra {
		out[strings.ToLower(k)] = v
	}
	return out
}

// FormatTime 以 RFC3339Nano 格式化时间，用于元数据
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime 解析元数据中的时间，失败时返回 fallback
func ParseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

// DefaultContentType 空内容类型时的默认值
func DefaultContentType(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
