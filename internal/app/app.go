package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/note-attachment-service/internal/dao"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/internal/service"
	pkgapp "github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/queue"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/tagger"
	"github.com/haierkeys/note-attachment-service/pkg/workerpool"
	"github.com/haierkeys/note-attachment-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// 外部后端
	Storage storage.Storager
	Queue   queue.Queuer
	Tagger  tagger.Tagger

	// Repository 层
	NoteRepo domain.NoteRepository

	// Service 层
	AttachmentService service.AttachmentService
	ArchiveService    service.ArchiveService
	NoteService       service.NoteService

	// maxUploadSize 单个附件大小上限（字节），0 表示不限制
	maxUploadSize int64

	// StartTime 容器创建时间
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option 覆盖由配置创建的后端，主要用于测试
type Option func(*options)

type options struct {
	storage storage.Storager
	queue   queue.Queuer
	tagger  tagger.Tagger
}

// WithStorage 使用给定的存储后端代替 cfg.Storage
func WithStorage(st storage.Storager) Option {
	return func(o *options) { o.storage = st }
}

// WithQueue 使用给定的消息队列代替 cfg.Queue
func WithQueue(q queue.Queuer) Option {
	return func(o *options) { o.queue = q }
}

// WithTagger 使用给定的标签生成器代替 cfg.Tagger
func WithTagger(tg tagger.Tagger) Option {
	return func(o *options) { o.tagger = tg }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	maxUpload, err := cfg.GetMaxUploadSize()
	if err != nil {
		return nil, fmt.Errorf("invalid attachment.max-upload-size: %w", err)
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),

		maxUploadSize: maxUpload,
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 存储后端，所有调用经由 Worker Pool 限流
	backend := o.storage
	if backend == nil {
		backend, err = storage.NewClient(&cfg.Storage, logger)
		if err != nil {
			a.abort()
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}
	a.Storage = storage.NewPooled(backend, a.workerPool)

	a.Queue = o.queue
	if a.Queue == nil {
		a.Queue, err = queue.NewClient(&cfg.Queue)
		if err != nil {
			a.abort()
			return nil, fmt.Errorf("init queue: %w", err)
		}
	}

	a.Tagger = o.tagger
	if a.Tagger == nil {
		if cfg.Tagger.Endpoint != "" {
			a.Tagger = tagger.NewHTTPTagger(cfg.Tagger.Endpoint, cfg.GetTaggerTimeout(), cfg.Tagger.MaxTags)
		} else {
			a.Tagger = tagger.Noop{}
		}
	}

	// 初始化 DAO 与 Repository 层
	a.Dao = dao.New(db, logger)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		Attachment: service.AttachmentServiceConfig{
			MaxPerNote:    cfg.Attachment.MaxPerNote,
			StrictQuota:   cfg.Attachment.StrictQuota,
			MaxUploadSize: maxUpload,
		},
		Archive: service.ArchiveServiceConfig{
			QueueName:      cfg.Queue.ArchiveQueueName,
			LocationPrefix: cfg.Archive.LocationPrefix,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.AttachmentService = service.NewAttachmentService(a.NoteRepo, a.Storage, a.writeQueueMgr, svcConfig.Attachment, logger)
	a.ArchiveService = service.NewArchiveService(a.NoteRepo, a.Storage, a.Queue, svcConfig.Archive, logger)
	a.NoteService = service.NewNoteService(a.NoteRepo, a.Storage, a.Tagger, logger)

	logger.Info("App container initialized successfully",
		zap.String("storageType", cfg.Storage.Type),
		zap.String("queueType", cfg.Queue.Type),
		zap.Int("attachmentQuota", cfg.Attachment.MaxPerNote),
		zap.Bool("strictQuota", cfg.Attachment.StrictQuota),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// abort 初始化失败时释放已创建的并发组件
func (a *App) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.workerPool.Shutdown(ctx)
	_ = a.writeQueueMgr.Shutdown(ctx)
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
// 返回错误如果池已满或已关闭
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// PaginationConfig 分页配置
func (a *App) PaginationConfig() pkgapp.PaginationConfig {
	return pkgapp.PaginationConfig{
		DefaultPageSize: a.config.App.DefaultPageSize,
		MaxPageSize:     a.config.App.MaxPageSize,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
// MaxUploadSize 单个附件大小上限（字节），0 表示不限制
func (a *App) MaxUploadSize() int64 {
	return a.maxUploadSize
}

func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> 后台操作 -> Queue -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		} else {
			a.logger.Info("Worker pool shutdown completed")
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		} else {
			a.logger.Info("write queue manager shutdown completed")
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭消息队列连接
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.logger.Warn("queue close error", zap.Error(err))
			errs = append(errs, fmt.Errorf("queue close: %w", err))
		}
	}

	// 5. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
