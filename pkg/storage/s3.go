// Package storage reads source files from and writes staged files to the object store.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// ErrObjectNotFound is returned when the requested object does not exist
var ErrObjectNotFound = errors.New("object not found")

// CSVContentType is set on staged objects
const CSVContentType = "text/csv"

// ObjectStore defines the object store operations used by a transfer
type ObjectStore interface {
	// GetObject returns the full contents of an object
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// PutObject writes body to bucket/key, replacing any existing object
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// S3Client is the subset of the S3 API the store needs; *s3.Client satisfies it
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store implements ObjectStore on Amazon S3
type S3Store struct {
	client   S3Client
	uploader *manager.Uploader
	logger   *zap.Logger
}

// NewS3Store creates a new S3-backed object store
func NewS3Store(client S3Client, logger *zap.Logger) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		logger:   logger.Named("s3-store"),
	}
}

// GetObject downloads an object into memory
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("file %s not found in bucket %s: %w", key, bucket, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}

	s.logger.Info("Read object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return data, nil
}

// PutObject uploads body, switching to multipart for large files
func (s *S3Store) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
	}

	s.logger.Info("Wrote object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)))

	return nil
}

// isNotFound reports whether err means the key or bucket does not exist
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
