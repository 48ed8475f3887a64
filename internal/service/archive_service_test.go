package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/queue/memory"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueue = "attachment-zip-requests"

func TestRequestArchiveWithoutAttachments(t *testing.T) {
	id := uuid.New()
	q := memory.NewQueue()
	svc := NewArchiveService(newMemNoteRepo(id), newLocalStorage(t), q, ArchiveServiceConfig{QueueName: testQueue}, nil)

	res, err := svc.RequestArchive(context.Background(), id.String())
	require.NoError(t, err)
	assert.True(t, res.NoContent)
	assert.Zero(t, q.Len(testQueue))
}

func TestRequestArchiveEnqueuesJob(t *testing.T) {
	id := uuid.New()
	repo := newMemNoteRepo(id)
	st := newLocalStorage(t)
	q := memory.NewQueue()

	attachments := NewAttachmentService(repo, st, nil, AttachmentServiceConfig{MaxPerNote: 3}, nil)
	_, err := put(t, attachments, id.String(), "a.png", "x", "image/png")
	require.NoError(t, err)

	svc := NewArchiveService(repo, st, q, ArchiveServiceConfig{QueueName: testQueue, LocationPrefix: "https://files.example.com/"}, nil)
	res, err := svc.RequestArchive(context.Background(), strings.ToUpper(id.String()))
	require.NoError(t, err)
	assert.False(t, res.NoContent)
	assert.True(t, res.Pending)
	assert.True(t, strings.HasSuffix(res.ArchiveID, ".zip"))
	assert.Equal(t, "https://files.example.com/notes/"+id.String()+"/attachmentzipfiles/"+res.ArchiveID, res.Location)

	payload, ok := q.Dequeue(testQueue)
	require.True(t, ok)
	var job domain.ArchiveJob
	require.NoError(t, sonic.Unmarshal(payload, &job))
	assert.Equal(t, domain.ArchiveJob{NoteID: id.String(), ArchiveID: res.ArchiveID}, job)
	assert.Contains(t, string(payload), `"noteId"`)
	assert.Contains(t, string(payload), `"archiveId"`)
}

func TestRequestArchiveDispatchFailure(t *testing.T) {
	id := uuid.New()
	repo := newMemNoteRepo(id)
	st := newLocalStorage(t)

	attachments := NewAttachmentService(repo, st, nil, AttachmentServiceConfig{MaxPerNote: 3}, nil)
	_, err := put(t, attachments, id.String(), "a", "x", "")
	require.NoError(t, err)

	cause := errors.New("connection refused")
	svc := NewArchiveService(repo, st, failingQueue{err: cause}, ArchiveServiceConfig{}, nil)
	_, err = svc.RequestArchive(context.Background(), id.String())
	assert.True(t, apperrors.Is(err, code.ErrorDispatchFailure))
	assert.ErrorIs(t, err, cause)
}

func TestGetArchive(t *testing.T) {
	id := uuid.New()
	repo := newMemNoteRepo(id)
	st := newLocalStorage(t)
	svc := NewArchiveService(repo, st, memory.NewQueue(), ArchiveServiceConfig{}, nil)
	ctx := context.Background()

	archiveID := uuid.NewString() + ".zip"

	_, err := svc.GetArchive(ctx, id.String(), archiveID)
	assert.True(t, apperrors.Is(err, code.ErrorArchiveNotFound))

	_, err = svc.GetArchive(ctx, id.String(), "../../etc/passwd")
	assert.True(t, apperrors.Is(err, code.ErrorInvalidParams))

	// 模拟外部 worker 写入归档
	container := domain.ArchiveContainerFor(id)
	require.NoError(t, st.EnsureContainer(ctx, container, storage.AccessPrivate))
	require.NoError(t, st.Put(ctx, container, archiveID, strings.NewReader("PK"), 2, ""))

	content, err := svc.GetArchive(ctx, id.String(), archiveID)
	require.NoError(t, err)
	defer content.Body.Close()
	assert.Equal(t, "application/zip", content.ContentType)
	b, _ := io.ReadAll(content.Body)
	assert.Equal(t, "PK", string(b))

	// 归档不占用附件配额
	attachments := NewAttachmentService(repo, st, nil, AttachmentServiceConfig{MaxPerNote: 3}, nil)
	list, err := attachments.List(ctx, id.String())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRequestArchiveIDsAreDistinct(t *testing.T) {
	id := uuid.New()
	repo := newMemNoteRepo(id)
	st := newLocalStorage(t)
	q := memory.NewQueue()

	attachments := NewAttachmentService(repo, st, nil, AttachmentServiceConfig{MaxPerNote: 3}, nil)
	_, err := put(t, attachments, id.String(), "a.png", "x", "image/png")
	require.NoError(t, err)

	svc := NewArchiveService(repo, st, q, ArchiveServiceConfig{QueueName: testQueue}, nil)
	first, err := svc.RequestArchive(context.Background(), id.String())
	require.NoError(t, err)
	second, err := svc.RequestArchive(context.Background(), id.String())
	require.NoError(t, err)

	assert.NotEqual(t, first.ArchiveID, second.ArchiveID)
	assert.NotEqual(t, first.Location, second.Location)
	require.Equal(t, 2, q.Len(testQueue))

	jobs := make([]domain.ArchiveJob, 0, 2)
	for range 2 {
		payload, ok := q.Dequeue(testQueue)
		require.True(t, ok)
		var job domain.ArchiveJob
		require.NoError(t, sonic.Unmarshal(payload, &job))
		jobs = append(jobs, job)
	}
	assert.Equal(t, domain.ArchiveJob{NoteID: id.String(), ArchiveID: first.ArchiveID}, jobs[0])
	assert.Equal(t, domain.ArchiveJob{NoteID: id.String(), ArchiveID: second.ArchiveID}, jobs[1])
}

func TestRequestArchiveEnsuresContainer(t *testing.T) {
	id := uuid.New()
	st := newLocalStorage(t)
	svc := NewArchiveService(newMemNoteRepo(id), st, memory.NewQueue(), ArchiveServiceConfig{QueueName: testQueue}, nil)

	res, err := svc.RequestArchive(context.Background(), id.String())
	require.NoError(t, err)
	assert.True(t, res.NoContent)
	assert.Equal(t, []string{domain.ContainerNameFor(id)}, st.ensuredContainers())
}
