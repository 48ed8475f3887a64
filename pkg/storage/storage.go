// Package storage is the object storage gateway. Every backend exposes the same
// container-scoped key/value-with-metadata contract.
// Package storage 对象存储网关，所有后端都实现同一套以容器为作用域的对象存储接口
package storage

import (
	"context"
	"io"

	"github.com/haierkeys/note-attachment-service/pkg/code"
	"github.com/haierkeys/note-attachment-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/note-attachment-service/pkg/storage/aws_s3"
	"github.com/haierkeys/note-attachment-service/pkg/storage/cloudflare_r2"
	"github.com/haierkeys/note-attachment-service/pkg/storage/local_fs"
	"github.com/haierkeys/note-attachment-service/pkg/storage/minio"
	"github.com/haierkeys/note-attachment-service/pkg/storage/object"
	"github.com/haierkeys/note-attachment-service/pkg/storage/webdav"

	"go.uber.org/zap"
)

type Type = string

const OSS Type = "oss"
const R2 Type = "r2"
const S3 Type = "s3"
const LOCAL Type = "localfs"
const MinIO Type = "minio"
const WebDAV Type = "webdav"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
}

type (
	ObjectInfo  = object.Info
	Object      = object.Object
	AccessLevel = object.AccessLevel
)

const (
	AccessPrivate    = object.AccessPrivate
	AccessPublicRead = object.AccessPublicRead
)

var (
	ErrObjectNotFound    = object.ErrObjectNotFound
	ErrContainerNotFound = object.ErrContainerNotFound
)

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// CustomPath 对象 key 前缀（云存储）或子目录（WebDAV）
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/attachments"`

	// ListConcurrency 列举时并发获取对象元数据的上限
	ListConcurrency int `yaml:"list-concurrency" default:"8"`
}

// Storager is the object storage gateway contract.
// Storager 对象存储网关接口
type Storager interface {
	// EnsureContainer creates the container if missing. Idempotent.
	EnsureContainer(ctx context.Context, container string, access AccessLevel) error
	// ListObjects enumerates a container. A missing container yields an empty slice.
	ListObjects(ctx context.Context, container string) ([]ObjectInfo, error)
	// Stat returns ErrObjectNotFound when the key is absent.
	Stat(ctx context.Context, container, key string) (*ObjectInfo, error)
	Exists(ctx context.Context, container, key string) (bool, error)
	// Put writes or overwrites an object, keeping its original creation time.
	Put(ctx context.Context, container, key string, body io.Reader, size int64, contentType string) error
	// SetMetadata merges meta into the object's custom metadata.
	SetMetadata(ctx context.Context, container, key string, meta map[string]string) error
	// Get returns ErrObjectNotFound when the key is absent. Callers close Body.
	Get(ctx context.Context, container, key string) (*Object, error)
	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, container, key string) error
	// DeleteContainer removes the container and everything in it.
	DeleteContainer(ctx context.Context, container string) error
	// Ping checks backend reachability.
	Ping(ctx context.Context) error
}

var (
	_ Storager = (*local_fs.LocalFS)(nil)
	_ Storager = (*aws_s3.S3)(nil)
	_ Storager = (*minio.MinIO)(nil)
	_ Storager = (*cloudflare_r2.R2)(nil)
	_ Storager = (*aliyun_oss.OSS)(nil)
	_ Storager = (*webdav.WebDAV)(nil)
)

// NewClient builds the backend selected by config.Type.
// NewClient 根据 config.Type 创建对应的存储后端
func NewClient(config *Config, logger *zap.Logger) (Storager, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("storageType", config.Type))

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath: config.SavePath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			ListConcurrency: config.ListConcurrency,
		}, logger)
	case R2:
		return cloudflare_r2.NewClient(&cloudflare_r2.Config{
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			ListConcurrency: config.ListConcurrency,
		}, logger)
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			ListConcurrency: config.ListConcurrency,
		}, logger)
	case MinIO:
		return minio.NewClient(&minio.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			ListConcurrency: config.ListConcurrency,
		}, logger)
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			Path:       config.Path,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		}, logger)
	}
	return nil, code.ErrorInvalidStorageType
}
