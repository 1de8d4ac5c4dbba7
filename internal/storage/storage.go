// Package storage wraps the S3-compatible bucket that holds cover and project images.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/observability"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the blob store used by the content services.
type ObjectStore interface {
	// UploadURL reserves a new storage ID and returns a presigned PUT URL for it.
	UploadURL(ctx context.Context) (storageID, uploadURL string, err error)
	// URL returns a presigned GET URL, or "" when the object does not exist.
	URL(ctx context.Context, storageID string) (string, error)
	Put(ctx context.Context, storageID string, r io.Reader, size int64, contentType string) error
	// Delete removes an object. Deleting a missing object succeeds.
	Delete(ctx context.Context, storageID string) error
	Ping(ctx context.Context) error
}

// Options configures a MinioStore.
type Options struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	Region     string
	PresignTTL time.Duration
}

// OptionsFromConfig maps the S3_* settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Endpoint:   cfg.S3Endpoint,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Bucket:     cfg.S3Bucket,
		UseSSL:     cfg.S3UseSSL,
		PresignTTL: cfg.PresignTTL(),
	}
}

// MinioStore implements ObjectStore with minio-go.
type MinioStore struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// NewMinioStore builds a client for opts. It does not contact the server.
func NewMinioStore(opts Options) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(opts.Endpoint, "http://"), "https://")
	region := opts.Region
	if region == "" {
		// A fixed region keeps presigning from looking up the bucket location.
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}
	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MinioStore{client: client, bucket: opts.Bucket, ttl: ttl}, nil
}

// EnsureBucket creates the bucket if it is missing.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: make bucket: %w", err)
	}
	return nil
}

func (s *MinioStore) UploadURL(ctx context.Context) (string, string, error) {
	defer observability.TrackStorage("presign_put")()
	id := uuid.NewString()
	u, err := s.client.PresignedPutObject(ctx, s.bucket, id, s.ttl)
	if err != nil {
		return "", "", fmt.Errorf("storage: presign put: %w", err)
	}
	return id, u.String(), nil
}

func (s *MinioStore) URL(ctx context.Context, storageID string) (string, error) {
	defer observability.TrackStorage("presign_get")()
	if _, err := s.client.StatObject(ctx, s.bucket, storageID, minio.StatObjectOptions{}); err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("storage: stat %s: %w", storageID, err)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, storageID, s.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("storage: presign get: %w", err)
	}
	return u.String(), nil
}

func (s *MinioStore) Put(ctx context.Context, storageID string, r io.Reader, size int64, contentType string) error {
	defer observability.TrackStorage("put")()
	_, err := s.client.PutObject(ctx, s.bucket, storageID, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", storageID, err)
	}
	return nil
}

func (s *MinioStore) Delete(ctx context.Context, storageID string) error {
	defer observability.TrackStorage("delete")()
	err := s.client.RemoveObject(ctx, s.bucket, storageID, minio.RemoveObjectOptions{})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("storage: delete %s: %w", storageID, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// IsNotFound reports whether err is an S3 missing-key or missing-bucket response.
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
