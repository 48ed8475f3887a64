package storage

import (
	"context"
	"io"

	"github.com/haierkeys/note-attachment-service/pkg/workerpool"
)

// Pooled runs every backend call on a shared worker pool, bounding concurrent backend I/O.
// Pooled 将所有后端调用放到共享 Worker Pool 中执行，限制后端并发 I/O
type Pooled struct {
	backend Storager
	pool    *workerpool.Pool
}

var _ Storager = (*Pooled)(nil)

// NewPooled wraps backend. A nil pool returns backend unchanged.
// NewPooled 包装后端，pool 为 nil 时直接返回原后端
func NewPooled(backend Storager, pool *workerpool.Pool) Storager {
	if pool == nil {
		return backend
	}
	return &Pooled{backend: backend, pool: pool}
}

// Unwrap 返回被包装的后端
func (p *Pooled) Unwrap() Storager {
	return p.backend
}

func (p *Pooled) EnsureContainer(ctx context.Context, container string, access AccessLevel) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.EnsureContainer(ctx, container, access)
	})
}

func (p *Pooled) ListObjects(ctx context.Context, container string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	err := p.pool.Submit(ctx, func(ctx context.Context) error {
		var err error
		out, err = p.backend.ListObjects(ctx, container)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pooled) Stat(ctx context.Context, container, key string) (*ObjectInfo, error) {
	var out *ObjectInfo
	err := p.pool.Submit(ctx, func(ctx context.Context) error {
		var err error
		out, err = p.backend.Stat(ctx, container, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pooled) Exists(ctx context.Context, container, key string) (bool, error) {
	var out bool
	err := p.pool.Submit(ctx, func(ctx context.Context) error {
		var err error
		out, err = p.backend.Exists(ctx, container, key)
		return err
	})
	if err != nil {
		return false, err
	}
	return out, nil
}

func (p *Pooled) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.Put(ctx, container, key, body, size, contentType)
	})
}

func (p *Pooled) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.SetMetadata(ctx, container, key, meta)
	})
}

// Get opens the object on the pool; reading Body happens on the caller's goroutine.
// Get 在 Pool 中打开对象，Body 的读取在调用方 goroutine 中进行
func (p *Pooled) Get(ctx context.Context, container, key string) (*Object, error) {
	var out *Object
	err := p.pool.Submit(ctx, func(ctx context.Context) error {
		obj, err := p.backend.Get(ctx, container, key)
		if err != nil {
			return err
		}
		// 调用方已放弃时关闭已打开的 Body
		if ctx.Err() != nil {
			_ = obj.Body.Close()
			return ctx.Err()
		}
		out = obj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pooled) Delete(ctx context.Context, container, key string) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.Delete(ctx, container, key)
	})
}

func (p *Pooled) DeleteContainer(ctx context.Context, container string) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.DeleteContainer(ctx, container)
	})
}

func (p *Pooled) Ping(ctx context.Context) error {
	return p.pool.Submit(ctx, func(ctx context.Context) error {
		return p.backend.Ping(ctx)
	})
}
