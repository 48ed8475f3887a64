package local_fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/fileurl"
	"github.com/haierkeys/note-attachment-service/pkg/storage/object"

	"github.com/pkg/errors"
)

// EnsureContainer 创建容器目录（幂等），本地磁盘不区分访问级别
func (p *LocalFS) EnsureContainer(ctx context.Context, container string, access object.AccessLevel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(p.containerPath(container), metaDir), 0754); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}

func (p *LocalFS) ListObjects(ctx context.Context, container string) ([]object.Info, error) {
	entries, err := os.ReadDir(p.containerPath(container))
	if os.IsNotExist(err) {
		return []object.Info{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}

	out := make([]object.Info, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		key, ok := p.keyFromName(container, entry.Name())
		if !ok {
			continue
		}
		info, err := p.stat(container, key)
		if errors.Is(err, object.ErrObjectNotFound) {
			// 与并发删除竞争，跳过
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, nil
}

func (p *LocalFS) Stat(ctx context.Context, container, key string) (*object.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.stat(container, key)
}

func (p *LocalFS) stat(container, key string) (*object.Info, error) {
	fi, err := os.Stat(p.objectPath(container, key))
	if os.IsNotExist(err) {
		return nil, object.ErrObjectNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}

	info := &object.Info{
		Key:          key,
		ContentType:  object.DefaultContentType(""),
		CreatedAt:    fi.ModTime(),
		LastModified: fi.ModTime(),
		Size:         fi.Size(),
		Metadata:     map[string]string{},
	}
	if sc, err := p.readSidecar(container, key); err == nil {
		info.ContentType = object.DefaultContentType(sc.ContentType)
		if !sc.CreatedAt.IsZero() {
			info.CreatedAt = sc.CreatedAt
		}
		if sc.Metadata != nil {
			info.Metadata = sc.Metadata
		}
	}
	return info, nil
}

func (p *LocalFS) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := p.Stat(ctx, container, key)
	if errors.Is(err, object.ErrObjectNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put writes to a temp file and renames it into place so readers never see a partial object.
// Put 先写入临时文件再重命名，读者不会看到写了一半的对象
func (p *LocalFS) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	dir := p.containerPath(container)
	if !fileurl.IsDir(dir) {
		return errors.Wrap(object.ErrContainerNotFound, "local_fs")
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "local_fs")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body}); err != nil {
		tmp.Close()
		return errors.Wrap(err, "local_fs")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "local_fs")
	}

	unlock := p.lock(container, key)
	defer unlock()

	sc := &object.Sidecar{CreatedAt: time.Now().UTC()}
	if old, err := p.readSidecar(container, key); err == nil && fileurl.IsExist(p.objectPath(container, key)) {
		sc.CreatedAt = old.CreatedAt
		sc.Metadata = old.Metadata
	}
	sc.ContentType = object.DefaultContentType(contentType)

	if err := os.Rename(tmp.Name(), p.objectPath(container, key)); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return p.writeSidecar(container, key, sc)
}

func (p *LocalFS) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := p.lock(container, key)
	defer unlock()

	if !fileurl.IsExist(p.objectPath(container, key)) {
		return object.ErrObjectNotFound
	}
	sc, err := p.readSidecar(container, key)
	if err != nil {
		sc = &object.Sidecar{ContentType: object.DefaultContentType(""), CreatedAt: time.Now().UTC()}
	}
	sc.Metadata = object.MergeMetadata(sc.Metadata, meta)
	return p.writeSidecar(container, key, sc)
}

func (p *LocalFS) Get(ctx context.Context, container, key string) (*object.Object, error) {
	info, err := p.Stat(ctx, container, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p.objectPath(container, key))
	if os.IsNotExist(err) {
		return nil, object.ErrObjectNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return &object.Object{Info: *info, Body: f}, nil
}

func (p *LocalFS) Delete(ctx context.Context, container, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := p.lock(container, key)
	defer unlock()

	if err := os.Remove(p.objectPath(container, key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	if err := os.Remove(p.sidecarPath(container, key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}

func (p *LocalFS) DeleteContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(p.containerPath(container)); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}

// keyFromName 将目录项名称还原为对象 key，哈希名从 sidecar 读取
func (p *LocalFS) keyFromName(container, name string) (string, bool) {
	if !fileurl.IsHashedName(name) {
		key, err := fileurl.DecodeName(name)
		return key, err == nil
	}
	data, err := os.ReadFile(filepath.Join(p.containerPath(container), metaDir, name+".json"))
	if err != nil {
		return "", false
	}
	sc, err := object.UnmarshalSidecar(data)
	if err != nil || sc.Key == "" {
		return "", false
	}
	return sc.Key, true
}

func (p *LocalFS) readSidecar(container, key string) (*object.Sidecar, error) {
	data, err := os.ReadFile(p.sidecarPath(container, key))
	if err != nil {
		return nil, err
	}
	return object.UnmarshalSidecar(data)
}

func (p *LocalFS) writeSidecar(container, key string, sc *object.Sidecar) error {
	sc.Key = key
	data, err := object.MarshalSidecar(sc)
	if err != nil {
		return errors.Wrap(err, "local_fs")
	}
	path := p.sidecarPath(container, key)
	if err := fileurl.CreatePath(path, 0754); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}

// ctxReader 在每次读取前检查 ctx，使大文件写入可被取消
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
