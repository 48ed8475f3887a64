package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct {
	err   error
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

type countingTask struct {
	schedule string
	startup  bool
	runs     atomic.Int32
	panics   bool
}

func (t *countingTask) Name() string       { return "counting" }
func (t *countingTask) Schedule() string   { return t.schedule }
func (t *countingTask) IsStartupRun() bool { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return nil
}

func TestBackendProbeTaskHealthy(t *testing.T) {
	st, q := &fakePinger{}, &fakePinger{}
	task := NewBackendProbeTask(st, q, "@every 1m", zap.NewNop())

	require.NoError(t, task.Run(context.Background()))
	assert.EqualValues(t, 1, st.calls.Load())
	assert.EqualValues(t, 1, q.calls.Load())
	assert.Equal(t, "BackendProbe", task.Name())
	assert.True(t, task.IsStartupRun())
}

func TestBackendProbeTaskReportsFailures(t *testing.T) {
	storageErr := errors.New("storage down")
	queueErr := errors.New("queue down")

	task := NewBackendProbeTask(&fakePinger{err: storageErr}, &fakePinger{err: queueErr}, "@every 1m", zap.NewNop())
	assert.ErrorIs(t, task.Run(context.Background()), storageErr)

	q := &fakePinger{err: queueErr}
	task = NewBackendProbeTask(&fakePinger{}, q, "@every 1m", zap.NewNop())
	assert.ErrorIs(t, task.Run(context.Background()), queueErr)
	assert.EqualValues(t, 1, q.calls.Load())
}

func TestBackendProbeTaskNilBackends(t *testing.T) {
	task := NewBackendProbeTask(nil, nil, "@every 1m", zap.NewNop())
	assert.NoError(t, task.Run(context.Background()))
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	err := s.AddTask(&countingTask{schedule: "not a schedule"})
	assert.Error(t, err)
	assert.Empty(t, s.Tasks())
}

func TestSchedulerStartupRunAndStop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &countingTask{schedule: "@every 1h", startup: true}
	require.NoError(t, s.AddTask(task))
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	sc.SendCloseSignal(nil)
	done := make(chan struct{})
	go func() {
		_ = sc.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	task := &countingTask{schedule: "@every 1h", panics: true}
	assert.NotPanics(t, func() { s.run(task, "startupRun") })
	assert.EqualValues(t, 1, task.runs.Load())
}

func TestSchedulerEverySecond(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{schedule: "@every 1s"}
	require.NoError(t, s.AddTask(task))
	s.Start()
	defer func() {
		sc.SendCloseSignal(nil)
		_ = sc.WaitClosed()
	}()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
