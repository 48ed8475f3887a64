package minio

import (
	"context"

	"github.com/haierkeys/note-attachment-service/pkg/storage/s3compat"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BucketName      string `yaml:"bucket-name"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	ListConcurrency int    `yaml:"list-concurrency"`
}

// MinIO 通过 S3 兼容接口（path-style）访问 MinIO
type MinIO struct {
	*s3compat.Bucket
	Config *Config
}

// NewClient 创建 MinIO 存储实例
func NewClient(conf *Config, logger *zap.Logger) (*MinIO, error) {
	if conf.Endpoint == "" || conf.BucketName == "" {
		return nil, errors.New("minio: endpoint and bucket-name are required")
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "minio")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(conf.Endpoint)
	})

	return &MinIO{
		Bucket: s3compat.NewBucket(client, s3compat.Options{
			Name:            conf.BucketName,
			CustomPath:      conf.CustomPath,
			Region:          region,
			ListConcurrency: conf.ListConcurrency,
			Label:           "minio",
			Logger:          logger,
		}),
		Config: conf,
	}, nil
}
