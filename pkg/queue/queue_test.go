package queue_test

import (
	"testing"

	"github.com/haierkeys/note-attachment-service/pkg/code"
	"github.com/haierkeys/note-attachment-service/pkg/queue"
	"github.com/haierkeys/note-attachment-service/pkg/queue/memory"
	"github.com/haierkeys/note-attachment-service/pkg/queue/redis_queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	q, err := queue.NewClient(&queue.Config{Type: queue.Memory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Queue{}, q)

	server := miniredis.RunT(t)
	q, err = queue.NewClient(&queue.Config{Type: queue.Redis, Addr: server.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &redis_queue.Queue{}, q)
	assert.NoError(t, q.Close())

	_, err = queue.NewClient(&queue.Config{Type: "kafka"})
	assert.ErrorIs(t, err, code.ErrorInvalidQueueType)
}
