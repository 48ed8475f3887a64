package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/queue"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/tagger"
	"github.com/haierkeys/note-attachment-service/pkg/util"
	"github.com/haierkeys/note-attachment-service/pkg/workerpool"
	"github.com/haierkeys/note-attachment-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	// File 配置文件路径（不序列化）
	File string `yaml:"-"`

	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    storage.Config   `yaml:"storage"`
	Queue      queue.Config     `yaml:"queue"`
	Attachment AttachmentConfig `yaml:"attachment"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Tagger     tagger.Config    `yaml:"tagger"`
	App        AppSettings      `yaml:"app"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	Task       TaskConfig       `yaml:"task"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（健康检查、指标、pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode" default:"disable"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AttachmentConfig 附件配置
type AttachmentConfig struct {
	// MaxPerNote 每个笔记的附件数量上限
	MaxPerNote int `yaml:"max-per-note" default:"3"`
	// StrictQuota 为 true 时同一笔记的新增附件串行执行，配额不会被并发突破
	StrictQuota bool `yaml:"strict-quota" default:"false"`
	// MaxUploadSize 单个附件大小上限，如 20MB，0 表示不限制
	MaxUploadSize string `yaml:"max-upload-size" default:"20MB"`
}

// ArchiveConfig 归档配置
type ArchiveConfig struct {
	// LocationPrefix 202 响应 Location 的前缀，如 https://files.example.com
	LocationPrefix string `yaml:"location-prefix"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"32"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"64"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LimiterConfig 限流配置
type LimiterConfig struct {
	// ArchivePerSecond 每个客户端每秒允许的归档请求数，0 表示不限制
	ArchivePerSecond int64 `yaml:"archive-per-second" default:"1"`
	// ArchiveBurst 突发容量
	ArchiveBurst int64 `yaml:"archive-burst" default:"5"`
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	// BackendProbe 后端连通性探测的 cron 表达式，为空时禁用
	BackendProbe string `yaml:"backend-probe" default:"@every 1m"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	if err := c.Validate(); err != nil {
		return nil, realpath, err
	}

	return c, realpath, nil
}

// Validate 校验配置中无法由默认值修正的错误
func (c *AppConfig) Validate() error {
	if !storage.StorageTypeMap[c.Storage.Type] {
		return errors.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	switch c.Queue.Type {
	case queue.Redis, queue.Memory:
	default:
		return errors.Errorf("unsupported queue type %q", c.Queue.Type)
	}
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Attachment.MaxPerNote < 1 {
		return errors.New("attachment.max-per-note must be at least 1")
	}
	if _, err := c.GetMaxUploadSize(); err != nil {
		return errors.Wrap(err, "attachment.max-upload-size")
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	return workerpool.Config{
		MaxWorkers:     c.App.WorkerPoolMaxWorkers,
		QueueSize:      c.App.WorkerPoolQueueSize,
		WarningPercent: 0.8,
	}
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	return writequeue.Config{
		QueueCapacity: c.App.WriteQueueCapacity,
		WriteTimeout:  util.ParseDurationOr(c.App.WriteQueueTimeout, 30*time.Second),
		IdleTimeout:   util.ParseDurationOr(c.App.WriteQueueIdleTime, 10*time.Minute),
	}
}

// GetMaxUploadSize 获取附件大小上限（字节）
func (c *AppConfig) GetMaxUploadSize() (int64, error) {
	if c.Attachment.MaxUploadSize == "" || c.Attachment.MaxUploadSize == "0" {
		return 0, nil
	}
	return util.ParseSize(c.Attachment.MaxUploadSize)
}

// GetTaggerTimeout 获取标签服务超时时间
func (c *AppConfig) GetTaggerTimeout() time.Duration {
	return util.ParseDurationOr(c.Tagger.Timeout, 10*time.Second)
}

// GetContextTimeout 获取请求上下文超时时间
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}
