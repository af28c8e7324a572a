// Package storage serves local attachment bytes for image uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
	infraconfig "github.com/erp/sallabridge/internal/infrastructure/config"
)

// Ensure S3AttachmentStore implements AttachmentStore
var _ salla.AttachmentStore = (*S3AttachmentStore)(nil)

// maxAttachmentSize caps how much of an object is read into memory
const maxAttachmentSize = 20 << 20 // 20 MB

// S3AttachmentStore serves attachment refs from an S3 bucket using AWS SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3AttachmentStore struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3AttachmentStoreOption is a functional option for configuring S3AttachmentStore
type S3AttachmentStoreOption func(*S3AttachmentStore)

// WithLogger sets a custom logger for S3AttachmentStore
func WithLogger(logger *zap.Logger) S3AttachmentStoreOption {
	return func(s *S3AttachmentStore) {
		s.logger = logger
	}
}

// NewS3AttachmentStore creates a new S3AttachmentStore from configuration.
// It supports any S3-compatible storage backend.
func NewS3AttachmentStore(cfg *infraconfig.StorageConfig, opts ...S3AttachmentStoreOption) (*S3AttachmentStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			if _, err := url.Parse(endpoint); err == nil {
				o.BaseEndpoint = aws.String(endpoint)
				// Custom endpoints (MinIO and friends) need path-style addressing
				o.UsePathStyle = true
			}
		}
	})

	store := &S3AttachmentStore{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// Open fetches the object behind ref and returns its bytes together with
// a filename derived from the object key.
func (s *S3AttachmentStore) Open(ctx context.Context, ref string) ([]byte, string, error) {
	if ref == "" {
		return nil, "", errors.New("attachment ref is required")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || strings.Contains(err.Error(), "NoSuchKey") {
			return nil, "", fmt.Errorf("attachment %q not found: %w", ref, err)
		}
		return nil, "", fmt.Errorf("failed to fetch attachment %q: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxAttachmentSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read attachment %q: %w", ref, err)
	}

	return data, path.Base(ref), nil
}

// Exists checks whether an object exists behind ref.
func (s *S3AttachmentStore) Exists(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, errors.New("attachment ref is required")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Some S3-compatible services report the code differently
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check attachment existence: %w", err)
	}

	return true, nil
}

// GetBucket returns the bucket name
func (s *S3AttachmentStore) GetBucket() string {
	return s.bucket
}
