package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nutriscan/internal/logging"
	"nutriscan/internal/services"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config addresses the bucket learned images are uploaded to.
type S3Config struct {
	Bucket string
	Prefix string
	Region string
}

// S3 uploads learned images to a bucket.
type S3 struct {
	client s3API
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3 loads the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imagestore", "s3", "images.s3_bucket is required", nil)
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "imagestore", "load aws config", "", err)
	}
	return newS3WithClient(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

func newS3WithClient(client s3API, cfg S3Config, logger *slog.Logger) *S3 {
	return &S3{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logging.NewComponentLogger(logger, "imagestore"),
	}
}

func (s *S3) Save(ctx context.Context, label string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", services.Wrap(services.ErrValidation, "imagestore", "save", "image data is empty", nil)
	}
	key := s.prefix + Name(label)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "imagestore", "s3 put object", key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	logging.WithContext(ctx, s.logger).Info("learned image uploaded",
		logging.String(logging.FieldEventType, "image_saved"),
		logging.String("location", location),
	)
	return location, nil
}
