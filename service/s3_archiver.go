package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"print-shop-mis/config"
)

const (
	s3MaxRetries     = 3
	s3RetryDelay     = time.Second
	s3UploadTimeout  = 30 * time.Second
	s3PresignExpires = 7 * 24 * time.Hour // SigV4 maximum
)

// S3Archiver uploads bill PDFs to an S3 compatible bucket
type S3Archiver struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

var _ Archiver = (*S3Archiver)(nil)

// NewS3Archiver builds an S3 client from the archive settings. Static keys are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, cfg config.ArchiveConfig) (*S3Archiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.S3AccessKeyID,
					SecretAccessKey: cfg.S3SecretKey,
				}, nil
			})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
			zap.S().Infof("Using custom S3 endpoint: %s", cfg.S3Endpoint)
		}
	})

	return &S3Archiver{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
		prefix:  strings.TrimPrefix(cfg.S3Prefix, "/"),
	}, nil
}

func (s *S3Archiver) Name() string { return "s3" }

// Upload puts the object with retries and returns a presigned GET URL.
func (s *S3Archiver) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.prefix + name

	var lastErr error
	for i := 0; i < s3MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s3RetryDelay * time.Duration(i)):
			}
			zap.S().Infof("🔄 Retry upload %d/%d: %s", i, s3MaxRetries-1, key)
		}

		uploadCtx, cancel := context.WithTimeout(ctx, s3UploadTimeout)
		_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
			Body:        bytes.NewReader(data),
		})
		cancel()
		if err != nil {
			lastErr = err
			zap.S().Warnf("⚠️ Upload attempt %d/%d failed: %v", i+1, s3MaxRetries, err)
			continue
		}

		presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s3PresignExpires))
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned GET URL: %w", err)
		}

		zap.S().Infof("✅ S3 upload success: bucket=%s, key=%s", s.bucket, key)
		return presigned.URL, nil
	}

	return "", fmt.Errorf("upload failed after %d attempts: %w", s3MaxRetries, lastErr)
}
