package aliyun_oss

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/storage/object"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func (p *OSS) prefix(container string) string {
	custom := strings.Trim(p.Config.CustomPath, "/")
	if custom == "" {
		return container + "/"
	}
	return custom + "/" + container + "/"
}

func (p *OSS) objectKey(container, key string) string {
	return p.prefix(container) + key
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound
	}
	var sep *oss.ServiceError
	if errors.As(err, &sep) {
		return sep.StatusCode == http.StatusNotFound
	}
	return false
}

// EnsureContainer 确保存储桶存在，容器本身是隐式前缀
func (p *OSS) EnsureContainer(ctx context.Context, container string, access object.AccessLevel) error {
	if p.ensured.Load() {
		return nil
	}
	exist, err := p.Client.IsBucketExist(p.Config.BucketName)
	if err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	if !exist {
		acl := oss.ACLPrivate
		if access == object.AccessPublicRead {
			acl = oss.ACLPublicRead
		}
		if err := p.Client.CreateBucket(p.Config.BucketName, oss.ACL(acl)); err != nil {
			return errors.Wrap(err, "aliyun_oss")
		}
	}
	p.ensured.Store(true)
	return nil
}

func (p *OSS) ListObjects(ctx context.Context, container string) ([]object.Info, error) {
	prefix := p.prefix(container)
	var keys []string

	token := ""
	for {
		opts := []oss.Option{oss.Prefix(prefix), oss.WithContext(ctx)}
		if token != "" {
			opts = append(opts, oss.ContinuationToken(token))
		}
		res, err := p.Bucket.ListObjectsV2(opts...)
		if err != nil {
			if isNotFound(err) {
				return []object.Info{}, nil
			}
			return nil, errors.Wrap(err, "aliyun_oss")
		}
		for _, o := range res.Objects {
			keys = append(keys, strings.TrimPrefix(o.Key, prefix))
		}
		if !res.IsTruncated {
			break
		}
		token = res.NextContinuationToken
	}

	out := make([]object.Info, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.ListConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			info, err := p.Stat(gctx, container, key)
			if errors.Is(err, object.ErrObjectNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = *info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := out[:0]
	for _, info := range out {
		if info.Key != "" {
			result = append(result, info)
		}
	}
	return result, nil
}

func (p *OSS) Stat(ctx context.Context, container, key string) (*object.Info, error) {
	header, err := p.Bucket.GetObjectDetailedMeta(p.objectKey(container, key), oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return infoFromHeader(key, header), nil
}

func infoFromHeader(key string, header http.Header) *object.Info {
	modified, _ := http.ParseTime(header.Get(oss.HTTPHeaderLastModified))
	size, _ := strconv.ParseInt(header.Get(oss.HTTPHeaderContentLength), 10, 64)

	meta := map[string]string{}
	for k := range header {
		if name, ok := strings.CutPrefix(k, oss.HTTPHeaderOssMetaPrefix); ok {
			meta[strings.ToLower(name)] = header.Get(k)
		}
	}

	return &object.Info{
		Key:          key,
		ContentType:  object.DefaultContentType(header.Get(oss.HTTPHeaderContentType)),
		CreatedAt:    object.ParseTime(meta[object.MetaCreatedAt], modified),
		LastModified: modified,
		Size:         size,
		Metadata:     meta,
	}
}

func (p *OSS) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := p.Stat(ctx, container, key)
	if errors.Is(err, object.ErrObjectNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put 上传对象，覆盖时保留原创建时间
func (p *OSS) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	meta := map[string]string{object.MetaCreatedAt: object.FormatTime(time.Now())}
	if old, err := p.Stat(ctx, container, key); err == nil {
		meta = object.MergeMetadata(old.Metadata, nil)
		if meta[object.MetaCreatedAt] == "" {
			meta[object.MetaCreatedAt] = object.FormatTime(old.CreatedAt)
		}
	} else if !errors.Is(err, object.ErrObjectNotFound) {
		return err
	}

	opts := []oss.Option{oss.WithContext(ctx), oss.ContentType(object.DefaultContentType(contentType))}
	for k, v := range meta {
		opts = append(opts, oss.Meta(k, v))
	}
	if err := p.Bucket.PutObject(p.objectKey(container, key), body, opts...); err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}

// SetMetadata 合并并覆盖写入对象自定义元数据
func (p *OSS) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	old, err := p.Stat(ctx, container, key)
	if err != nil {
		return err
	}

	opts := []oss.Option{oss.WithContext(ctx), oss.ContentType(old.ContentType)}
	for k, v := range object.MergeMetadata(old.Metadata, meta) {
		opts = append(opts, oss.Meta(k, v))
	}
	if err := p.Bucket.SetObjectMeta(p.objectKey(container, key), opts...); err != nil {
		if isNotFound(err) {
			return object.ErrObjectNotFound
		}
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}

func (p *OSS) Get(ctx context.Context, container, key string) (*object.Object, error) {
	info, err := p.Stat(ctx, container, key)
	if err != nil {
		return nil, err
	}
	body, err := p.Bucket.GetObject(p.objectKey(container, key), oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &object.Object{Info: *info, Body: body}, nil
}

func (p *OSS) Delete(ctx context.Context, container, key string) error {
	err := p.Bucket.DeleteObject(p.objectKey(container, key), oss.WithContext(ctx))
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}

func (p *OSS) DeleteContainer(ctx context.Context, container string) error {
	prefix := p.prefix(container)
	token := ""
	for {
		opts := []oss.Option{oss.Prefix(prefix), oss.WithContext(ctx)}
		if token != "" {
			opts = append(opts, oss.ContinuationToken(token))
		}
		res, err := p.Bucket.ListObjectsV2(opts...)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return errors.Wrap(err, "aliyun_oss")
		}
		if len(res.Objects) > 0 {
			keys := make([]string, 0, len(res.Objects))
			for _, o := range res.Objects {
				keys = append(keys, o.Key)
			}
			if _, err := p.Bucket.DeleteObjects(keys, oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
				return errors.Wrap(err, "aliyun_oss")
			}
		}
		if !res.IsTruncated {
			return nil
		}
		token = res.NextContinuationToken
	}
}

func (p *OSS) Ping(ctx context.Context) error {
	if _, err := p.Bucket.ListObjectsV2(oss.MaxKeys(1), oss.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}
