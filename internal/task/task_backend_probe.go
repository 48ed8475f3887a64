package task

import (
	"context"
	"time"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/metrics"

	"go.uber.org/zap"
)

// Pinger 可探测连通性的后端
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendProbeTask 定时探测存储与队列后端并更新 storage_up / queue_up
type BackendProbeTask struct {
	storage  Pinger
	queue    Pinger
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

func init() {
	Register(NewBackendProbeTaskFromApp)
}

// NewBackendProbeTask 创建探测任务
func NewBackendProbeTask(storage, queue Pinger, schedule string, lg *zap.Logger) *BackendProbeTask {
	return &BackendProbeTask{
		storage:  storage,
		queue:    queue,
		schedule: schedule,
		timeout:  5 * time.Second,
		logger:   lg,
	}
}

// NewBackendProbeTaskFromApp 从应用容器创建探测任务，未配置 cron 表达式时禁用
func NewBackendProbeTaskFromApp(appContainer *app.App) (Task, error) {
	schedule := appContainer.Config().Task.BackendProbe
	if schedule == "" {
		return nil, nil
	}
	return NewBackendProbeTask(appContainer.Storage, appContainer.Queue, schedule, appContainer.Logger()), nil
}

// Name 返回任务名称
func (t *BackendProbeTask) Name() string {
	return "BackendProbe"
}

// Schedule 返回 cron 表达式
func (t *BackendProbeTask) Schedule() string {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *BackendProbeTask) IsStartupRun() bool {
	return true
}

// Run 执行探测，任一后端不可达时返回其错误
func (t *BackendProbeTask) Run(ctx context.Context) error {
	storageErr := t.probe(ctx, "storage", t.storage)
	metrics.SetStorageUp(storageErr == nil)

	queueErr := t.probe(ctx, "queue", t.queue)
	metrics.SetQueueUp(queueErr == nil)

	if storageErr != nil {
		return storageErr
	}
	return queueErr
}

func (t *BackendProbeTask) probe(ctx context.Context, name string, p Pinger) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		t.logger.Warn("task log",
			zap.String("task", t.Name()),
			zap.String("backend", name),
			zap.String("msg", "unreachable"),
			zap.Error(err))
		return err
	}
	return nil
}
