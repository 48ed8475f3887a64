package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/storage/local_fs"
	"github.com/stretchr/testify/require"
)

// memNoteRepo 内存版笔记仓储
type memNoteRepo struct {
	mu     sync.Mutex
	notes  map[uuid.UUID]*domain.Note
	calls  atomic.Int64
	failOn error
}

func newMemNoteRepo(ids ...uuid.UUID) *memNoteRepo {
	r := &memNoteRepo{notes: map[uuid.UUID]*domain.Note{}}
	for _, id := range ids {
		r.notes[id] = &domain.Note{ID: id, Title: "note", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	}
	return r
}

func (r *memNoteRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.calls.Add(1)
	if r.failOn != nil {
		return false, r.failOn
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.notes[id]
	return ok, nil
}

func (r *memNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt, note.UpdatedAt = time.Now(), time.Now()
	cp := *note
	r.notes[note.ID] = &cp
	return note, nil
}

func (r *memNoteRepo) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.notes[note.ID]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	note.CreatedAt, note.UpdatedAt = old.CreatedAt, time.Now()
	cp := *note
	r.notes[note.ID] = &cp
	return note, nil
}

func (r *memNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *memNoteRepo) List(ctx context.Context, page, pageSize int) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Note, 0, len(r.notes))
	for _, n := range r.notes {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memNoteRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.notes)), nil
}

// countingStorage 记录后端调用次数
type countingStorage struct {
	storage.Storager
	calls atomic.Int64

	mu      sync.Mutex
	ensured []string
}

func (c *countingStorage) EnsureContainer(ctx context.Context, container string, access storage.AccessLevel) error {
	c.calls.Add(1)
	c.mu.Lock()
	c.ensured = append(c.ensured, container)
	c.mu.Unlock()
	return c.Storager.EnsureContainer(ctx, container, access)
}

func (c *countingStorage) ensuredContainers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ensured...)
}

func (c *countingStorage) ListObjects(ctx context.Context, container string) ([]storage.ObjectInfo, error) {
	c.calls.Add(1)
	return c.Storager.ListObjects(ctx, container)
}

func (c *countingStorage) Stat(ctx context.Context, container, key string) (*storage.ObjectInfo, error) {
	c.calls.Add(1)
	return c.Storager.Stat(ctx, container, key)
}

func (c *countingStorage) Exists(ctx context.Context, container, key string) (bool, error) {
	c.calls.Add(1)
	return c.Storager.Exists(ctx, container, key)
}

func (c *countingStorage) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	c.calls.Add(1)
	return c.Storager.Put(ctx, container, key, body, size, contentType)
}

func (c *countingStorage) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	c.calls.Add(1)
	return c.Storager.SetMetadata(ctx, container, key, meta)
}

func (c *countingStorage) Get(ctx context.Context, container, key string) (*storage.Object, error) {
	c.calls.Add(1)
	return c.Storager.Get(ctx, container, key)
}

func (c *countingStorage) Delete(ctx context.Context, container, key string) error {
	c.calls.Add(1)
	return c.Storager.Delete(ctx, container, key)
}

func (c *countingStorage) DeleteContainer(ctx context.Context, container string) error {
	c.calls.Add(1)
	return c.Storager.DeleteContainer(ctx, container)
}

func newLocalStorage(t *testing.T) *countingStorage {
	t.Helper()
	st, err := local_fs.NewClient(&local_fs.Config{SavePath: t.TempDir()})
	require.NoError(t, err)
	return &countingStorage{Storager: st}
}

// failingQueue 入队总是失败
type failingQueue struct{ err error }

func (q failingQueue) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	return q.err
}
func (q failingQueue) Ping(ctx context.Context) error { return q.err }
func (q failingQueue) Close() error                   { return nil }

// failingStorage 在指定操作上返回错误，其余操作交给真实后端
type failingStorage struct {
	storage.Storager
	putErr    error
	metaErr   error
	deleteErr error
}

func (f *failingStorage) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Storager.Put(ctx, container, key, body, size, contentType)
}

func (f *failingStorage) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	if f.metaErr != nil {
		return f.metaErr
	}
	return f.Storager.SetMetadata(ctx, container, key, meta)
}

func (f *failingStorage) Delete(ctx context.Context, container, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Storager.Delete(ctx, container, key)
}
