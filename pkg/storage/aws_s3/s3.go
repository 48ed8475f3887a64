package aws_s3

import (
	"context"

	"github.com/haierkeys/note-attachment-service/pkg/storage/s3compat"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	ListConcurrency int    `yaml:"list-concurrency"`
}

// S3 AWS S3 存储，容器映射为 bucket 内的 key 前缀
type S3 struct {
	*s3compat.Bucket
	Config *Config
}

// NewClient 创建 S3 存储实例
func NewClient(conf *Config, logger *zap.Logger) (*S3, error) {
	if conf.BucketName == "" {
		return nil, errors.New("aws_s3: bucket-name is required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg)

	return &S3{
		Bucket: s3compat.NewBucket(client, s3compat.Options{
			Name:            conf.BucketName,
			CustomPath:      conf.CustomPath,
			Region:          conf.Region,
			ListConcurrency: conf.ListConcurrency,
			Label:           "aws_s3",
			Logger:          logger,
		}),
		Config: conf,
	}, nil
}
