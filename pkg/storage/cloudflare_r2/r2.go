package cloudflare_r2

import (
	"context"
	"fmt"

	"github.com/haierkeys/note-attachment-service/pkg/storage/s3compat"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	AccountID       string `yaml:"account-id"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	ListConcurrency int    `yaml:"list-concurrency"`
}

// R2 Cloudflare R2 存储
type R2 struct {
	*s3compat.Bucket
	Config *Config
}

// NewClient creates an R2 storage instance
// NewClient 创建 R2 存储实例
func NewClient(conf *Config, logger *zap.Logger) (*R2, error) {
	if conf.AccountID == "" || conf.BucketName == "" {
		return nil, errors.New("cloudflare_r2: account-id and bucket-name are required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "cloudflare_r2")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", conf.AccountID))
	})

	return &R2{
		Bucket: s3compat.NewBucket(client, s3compat.Options{
			Name:            conf.BucketName,
			CustomPath:      conf.CustomPath,
			Region:          "auto",
			ListConcurrency: conf.ListConcurrency,
			Label:           "cloudflare_r2",
			Logger:          logger,
		}),
		Config: conf,
	}, nil
}
