// Package storage persists rendered share images in S3-compatible object
// storage and hands out short-lived presigned URLs for them.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shelfshare/shelfshare-server/internal/config"
)

// ObjectStore wraps a MinIO client scoped to a single bucket.
type ObjectStore struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
	logger        *slog.Logger
}

// New creates an object store from config. It does not touch the network;
// call EnsureBucket at startup to verify connectivity.
func New(cfg config.StorageConfig, logger *slog.Logger) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &ObjectStore{
		client:        client,
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
		logger:        logger,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	s.logger.Info("created storage bucket", "bucket", s.bucket)
	return nil
}

// PutPNG uploads PNG data under the given key.
func (s *ObjectStore) PutPNG(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "image/png",
		})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Debug("uploaded image", "key", key, "bytes", len(data))
	return nil
}

// PresignedGet returns a time-limited GET URL for the key. Signing is local;
// no request is made.
func (s *ObjectStore) PresignedGet(ctx context.Context, key string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return url.String(), nil
}

// Remove deletes the object at key. Missing objects are not an error.
func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// ImageKey builds the object key for one rendered list image. Keys are
// versioned so stale social-network caches never see a newer image under an
// old URL.
func ImageKey(listID string, version int, size string) string {
	return fmt.Sprintf("lists/%s/v%d/%s.png", listID, version, size)
}
