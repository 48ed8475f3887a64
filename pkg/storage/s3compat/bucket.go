// Package s3compat implements the storage contract on top of any S3 compatible API.
// Containers are key prefixes inside one bucket: <custom-path>/<container>/<key>.
// Package s3compat 基于 S3 兼容 API 实现存储接口，容器映射为桶内的 key 前缀
package s3compat

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/haierkeys/note-attachment-service/pkg/storage/object"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bucket 一个 S3 兼容存储桶
type Bucket struct {
	Client          *s3.Client
	TransferManager *transfermanager.Client

	name            string
	customPath      string
	region          string
	listConcurrency int
	label           string
	logger          *zap.Logger

	ensured atomic.Bool
}

// Options 构建 Bucket 的参数
type Options struct {
	Name            string
	CustomPath      string
	Region          string
	ListConcurrency int
	// Label 用于错误包装与日志，如 aws_s3 / minio / cloudflare_r2
	Label  string
	Logger *zap.Logger
}

func NewBucket(client *s3.Client, opt Options) *Bucket {
	if opt.ListConcurrency <= 0 {
		opt.ListConcurrency = 8
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Bucket{
		Client:          client,
		TransferManager: transfermanager.New(client),
		name:            opt.Name,
		customPath:      strings.Trim(opt.CustomPath, "/"),
		region:          opt.Region,
		listConcurrency: opt.ListConcurrency,
		label:           opt.Label,
		logger:          opt.Logger,
	}
}

func (b *Bucket) prefix(container string) string {
	if b.customPath == "" {
		return container + "/"
	}
	return b.customPath + "/" + container + "/"
}

func (b *Bucket) objectKey(container, key string) string {
	return b.prefix(container) + key
}

func (b *Bucket) wrap(err error) error {
	return errors.Wrap(err, b.label)
}

// isNotFound reports whether err is a 404 style API error.
// isNotFound 判断 err 是否为 404 类 API 错误
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nf) || errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket", "404":
			return true
		}
	}
	return false
}

// EnsureContainer makes sure the bucket exists. Containers themselves are implicit prefixes.
// EnsureContainer 确保存储桶存在，容器本身是隐式前缀
func (b *Bucket) EnsureContainer(ctx context.Context, container string, access object.AccessLevel) error {
	if b.ensured.Load() {
		return nil
	}

	_, err := b.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)})
	if err == nil {
		b.ensured.Store(true)
		return nil
	}
	if !isNotFound(err) {
		return b.wrap(err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(b.name), ACL: types.BucketCannedACLPrivate}
	if access == object.AccessPublicRead {
		input.ACL = types.BucketCannedACLPublicRead
	}
	if b.region != "" && b.region != "us-east-1" && b.region != "auto" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}
	if _, err := b.Client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return b.wrap(err)
		}
	}
	b.logger.Info("bucket created", zap.String("bucket", b.name))
	b.ensured.Store(true)
	return nil
}

// ListObjects pages through the container prefix and fetches per-object metadata concurrently.
// ListObjects 分页列举容器前缀，并发获取每个对象的元数据
func (b *Bucket) ListObjects(ctx context.Context, container string) ([]object.Info, error) {
	prefix := b.prefix(container)
	var keys []types.Object

	paginator := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return []object.Info{}, nil
			}
			return nil, b.wrap(err)
		}
		keys = append(keys, page.Contents...)
	}

	out := make([]object.Info, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.listConcurrency)
	for i, o := range keys {
		g.Go(func() error {
			key := strings.TrimPrefix(aws.ToString(o.Key), prefix)
			info, err := b.stat(gctx, container, key)
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

	// 去掉并发删除留下的空位
	result := out[:0]
	for _, info := range out {
		if info.Key != "" {
			result = append(result, info)
		}
	}
	return result, nil
}

func (b *Bucket) Stat(ctx context.Context, container, key string) (*object.Info, error) {
	return b.stat(ctx, container, key)
}

func (b *Bucket) stat(ctx context.Context, container, key string) (*object.Info, error) {
	head, err := b.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(container, key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, b.wrap(err)
	}

	modified := aws.ToTime(head.LastModified)
	meta := object.MergeMetadata(head.Metadata, nil)
	return &object.Info{
		Key:          key,
		ContentType:  object.DefaultContentType(aws.ToString(head.ContentType)),
		CreatedAt:    object.ParseTime(meta[object.MetaCreatedAt], modified),
		LastModified: modified,
		Size:         aws.ToInt64(head.ContentLength),
		Metadata:     meta,
	}, nil
}

func (b *Bucket) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := b.stat(ctx, container, key)
	if errors.Is(err, object.ErrObjectNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put uploads through the transfer manager, carrying the original created-at forward on overwrite.
// Put 通过 transfer manager 上传，覆盖时保留原创建时间
func (b *Bucket) Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error {
	meta := map[string]string{object.MetaCreatedAt: object.FormatTime(time.Now())}
	if old, err := b.stat(ctx, container, key); err == nil {
		meta = object.MergeMetadata(old.Metadata, nil)
		if meta[object.MetaCreatedAt] == "" {
			meta[object.MetaCreatedAt] = object.FormatTime(old.CreatedAt)
		}
	} else if !errors.Is(err, object.ErrObjectNotFound) {
		return err
	}

	_, err := b.TransferManager.UploadObject(ctx, &transfermanager.UploadObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(b.objectKey(container, key)),
		Body:        body,
		ContentType: aws.String(object.DefaultContentType(contentType)),
		Metadata:    meta,
	})
	if err != nil {
		return b.wrap(err)
	}
	return nil
}

// SetMetadata rewrites the object's metadata in place with a self copy.
// SetMetadata 通过自我复制原地更新对象元数据
func (b *Bucket) SetMetadata(ctx context.Context, container, key string, meta map[string]string) error {
	old, err := b.stat(ctx, container, key)
	if err != nil {
		return err
	}

	objectKey := b.objectKey(container, key)
	_, err = b.Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(b.name),
		Key:               aws.String(objectKey),
		CopySource:        aws.String(b.name + "/" + escapeKey(objectKey)),
		ContentType:       aws.String(old.ContentType),
		Metadata:          object.MergeMetadata(old.Metadata, meta),
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	if err != nil {
		if isNotFound(err) {
			return object.ErrObjectNotFound
		}
		return b.wrap(err)
	}
	return nil
}

func (b *Bucket) Get(ctx context.Context, container, key string) (*object.Object, error) {
	out, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(container, key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, b.wrap(err)
	}

	modified := aws.ToTime(out.LastModified)
	meta := object.MergeMetadata(out.Metadata, nil)
	return &object.Object{
		Info: object.Info{
			Key:          key,
			ContentType:  object.DefaultContentType(aws.ToString(out.ContentType)),
			CreatedAt:    object.ParseTime(meta[object.MetaCreatedAt], modified),
			LastModified: modified,
			Size:         aws.ToInt64(out.ContentLength),
			Metadata:     meta,
		},
		Body: out.Body,
	}, nil
}

func (b *Bucket) Delete(ctx context.Context, container, key string) error {
	_, err := b.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(container, key)),
	})
	if err != nil && !isNotFound(err) {
		return b.wrap(err)
	}
	return nil
}

// DeleteContainer deletes every object under the container prefix in batches of 1000.
// DeleteContainer 以每批 1000 个删除容器前缀下的所有对象
func (b *Bucket) DeleteContainer(ctx context.Context, container string) error {
	paginator := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(b.prefix(container)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return b.wrap(err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, o := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: o.Key})
		}
		if _, err := b.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.name),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return b.wrap(err)
		}
	}
	return nil
}

func (b *Bucket) Ping(ctx context.Context) error {
	_, err := b.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)})
	if err != nil {
		return b.wrap(err)
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return path.Join(parts...)
}
