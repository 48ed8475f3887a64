package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOPerName(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	require.NoError(t, q.Enqueue(ctx, "a", []byte("1")))
	require.NoError(t, q.Enqueue(ctx, "b", []byte("x")))
	require.NoError(t, q.Enqueue(ctx, "a", []byte("2")))

	assert.Equal(t, 2, q.Len("a"))

	v, ok := q.Dequeue("a")
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))
	v, _ = q.Dequeue("a")
	assert.Equal(t, "2", string(v))

	_, ok = q.Dequeue("a")
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len("b"))
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Enqueue(context.Background(), "a", nil), ErrClosed)
	assert.ErrorIs(t, q.Ping(context.Background()), ErrClosed)
}
