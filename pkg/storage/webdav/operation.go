package webdav

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/fileurl"
	"github.com/haierkeys/note-attachment-service/pkg/storage/object"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// EnsureContainer 创建容器目录（幂等）
func (w *WebDAV) EnsureContainer(ctx context.Context, container string, access object.AccessLevel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Client.MkdirAll(path.Join(w.containerPath(container), metaDir), 0755); err != nil {
		return errors.Wrap(err, "webdav")
	}
	return nil
}

func (w *WebDAV) ListObjects(ctx context.Context, container string) ([]object.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := w.Client.ReadDir(w.containerPath(container))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return []object.Info{}, nil
		}
		return nil, errors.Wrap(err, "webdav")
	}

	out := make([]object.Info, 0, len(entries))
	for _, fi := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
			continue
		}
		key, ok := w.keyFromName(container, fi.Name())
		if !ok {
			continue
		}
		out = append(out, *w.infoWithSidecar(container, key, fi))
	}
	return out, nil
}

func (w *WebDAV) infoWithSidecar(container, key string, fi os.FileInfo) *object.Info {
	info := &object.Info{
		Key:          key,
		ContentType:  object.DefaultContentType(""),
		CreatedAt:    fi.ModTime(),
		LastModified: fi.ModTime(),
		Size:         fi.Size(),
		Metadata:     map[string]string{},
	}
	if sc, err := w.readSidecar(container, key); err == nil {
		info.ContentType = object.DefaultContentType(sc.ContentType)
		if !sc.CreatedAt.IsZero() {
			info.CreatedAt = sc.CreatedAt
		}
		if sc.Metadata != nil {
			info.Metadata = sc.Metadata
		}
	}
	return info
}

func (w *WebDAV) Stat(ctx context.Context, container, key string) (*object.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := w.Client.Stat(w.objectPath(container, key))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, "webdav")
	}
	return w.infoWithSidecar(container, key, fi), nil
}

func (w *WebDAV) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := w.Stat(ctx, container, key)
	if errors.Is(err, object.ErrObjectNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put 流式上传对象，覆盖时保留原创建时间与元数据
func (w *WebDAV) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sc := &object.Sidecar{CreatedAt: time.Now().UTC()}
	if old, err := w.readSidecar(container, key); err == nil {
		sc.CreatedAt = old.CreatedAt
		sc.Metadata = old.Metadata
	}
	sc.ContentType = object.DefaultContentType(contentType)

	if err := w.Client.WriteStream(w.objectPath(container, key), body, 0644); err != nil {
		return errors.Wrap(err, "webdav")
	}
	return w.writeSidecar(container, key, sc)
}

func (w *WebDAV) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	info, err := w.Stat(ctx, container, key)
	if err != nil {
		return err
	}
	sc := &object.Sidecar{
		ContentType: info.ContentType,
		CreatedAt:   info.CreatedAt,
		Metadata:    object.MergeMetadata(info.Metadata, meta),
	}
	return w.writeSidecar(container, key, sc)
}

func (w *WebDAV) Get(ctx context.Context, container, key string) (*object.Object, error) {
	info, err := w.Stat(ctx, container, key)
	if err != nil {
		return nil, err
	}
	body, err := w.Client.ReadStream(w.objectPath(container, key))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, "webdav")
	}
	return &object.Object{Info: *info, Body: body}, nil
}

func (w *WebDAV) Delete(ctx context.Context, container, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, p := range []string{w.objectPath(container, key), w.sidecarPath(container, key)} {
		if err := w.Client.Remove(p); err != nil && !gowebdav.IsErrNotFound(err) {
			return errors.Wrap(err, "webdav")
		}
	}
	return nil
}

func (w *WebDAV) DeleteContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Client.RemoveAll(w.containerPath(container)); err != nil && !gowebdav.IsErrNotFound(err) {
		return errors.Wrap(err, "webdav")
	}
	return nil
}

// keyFromName 将目录项名称还原为对象 key，哈希名从 sidecar 读取
func (w *WebDAV) keyFromName(container, name string) (string, bool) {
	if !fileurl.IsHashedName(name) {
		key, err := fileurl.DecodeName(name)
		return key, err == nil
	}
	data, err := w.Client.Read(path.Join(w.containerPath(container), metaDir, name+".json"))
	if err != nil {
		return "", false
	}
	sc, err := object.UnmarshalSidecar(data)
	if err != nil || sc.Key == "" {
		return "", false
	}
	return sc.Key, true
}

func (w *WebDAV) readSidecar(container, key string) (*object.Sidecar, error) {
	data, err := w.Client.Read(w.sidecarPath(container, key))
	if err != nil {
		return nil, err
	}
	return object.UnmarshalSidecar(data)
}

func (w *WebDAV) writeSidecar(container, key string, sc *object.Sidecar) error {
	sc.Key = key
	data, err := object.MarshalSidecar(sc)
	if err != nil {
		return errors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(w.sidecarPath(container, key), data, 0644); err != nil {
		return errors.Wrap(err, "webdav")
	}
	return nil
}
