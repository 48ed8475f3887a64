package writequeue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSerializesSameKey(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), "container-a", func(ctx context.Context) error {
				n := inFlight.Add(1)
				for {
					cur := maxInFlight.Load()
					if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestExecuteReturnsFnError(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	want := assert.AnError
	err := m.Execute(context.Background(), "k", func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestExecuteAfterShutdown(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Execute(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
}

func TestDoCleanupRemovesIdleQueues(t *testing.T) {
	m := New(&Config{IdleTimeout: time.Hour}, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), "k", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, m.QueueCount())

	m.doCleanup(time.Now())
	assert.Equal(t, 1, m.QueueCount())

	m.doCleanup(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, m.QueueCount())
}
