package aliyun_oss

import (
	"sync/atomic"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	ListConcurrency int    `yaml:"list-concurrency"`
}

// OSS 阿里云对象存储，容器映射为 bucket 内的 key 前缀
type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
	logger *zap.Logger

	ensured atomic.Bool
}

// NewClient 创建阿里云 OSS 存储实例
func NewClient(conf *Config, logger *zap.Logger) (*OSS, error) {
	if conf.Endpoint == "" || conf.BucketName == "" {
		return nil, errors.New("aliyun_oss: endpoint and bucket-name are required")
	}
	if conf.ListConcurrency <= 0 {
		conf.ListConcurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}

	return &OSS{
		Client: client,
		Bucket: bucket,
		Config: conf,
		logger: logger,
	}, nil
}
