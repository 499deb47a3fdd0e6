package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/listing-studio/engine/pkg/config"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	"github.com/listing-studio/engine/pkg/utils"
	"go.uber.org/zap"
)

type s3Store struct {
	svc      s3iface.S3API
	bucket   string
	region   string
	endpoint string
}

// NewS3Store builds a Store backed by an S3 bucket. Static credentials are used
// when configured, otherwise the default AWS credential chain applies.
func NewS3Store(cfg config.S3Config) (Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess), cfg), nil
}

// NewS3StoreWithClient wraps an existing S3 API client.
func NewS3StoreWithClient(svc s3iface.S3API, cfg config.S3Config) Store {
	return &s3Store{svc: svc, bucket: cfg.Bucket, region: cfg.Region, endpoint: strings.TrimRight(cfg.Endpoint, "/")}
}

func (s *s3Store) Put(ctx context.Context, key string, body []byte, contentType string) (Object, error) {
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"sha256": aws.String(utils.SHA256Hex(body)),
		},
	})
	if err != nil {
		logger.L().Error("s3 put object failed", zap.String("key", key), zap.Error(err))
		return Object{}, appErr.Wrap(err, appErr.CodeUnavailable, "store object failed")
	}
	return Object{Key: key, URL: s.publicURL(key)}, nil
}

func (s *s3Store) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
