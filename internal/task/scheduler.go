package task

import (
	"context"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() string              // cron 表达式，支持 @every 1m 等描述符
	IsStartupRun() bool            // 是否立即执行一次
}

// 单次执行的最长时间
const runTimeout = 5 * time.Minute

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		tasks: make([]Task, 0),
		sc:    sc,
	}
}

// AddTask 添加任务，表达式无法解析时返回错误
func (s *Scheduler) AddTask(task Task) error {
	_, err := s.cron.AddFunc(task.Schedule(), func() {
		s.run(task, "loopRun")
	})
	if err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Tasks 返回已添加的任务
func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start 启动所有任务，收到关闭信号后停止调度并等待正在执行的任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting ", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		if task.IsStartupRun() {
			go s.run(task, "startupRun")
		}
	}

	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		<-s.cron.Stop().Done()
		s.logger.Info("task scheduler stopped")
	})
}

func (s *Scheduler) run(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

// cronLogger 将 cron 的日志接口适配到 zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
