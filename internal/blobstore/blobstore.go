package blobstore

import (
	"bytes"
	"context"
	"fmt"

	"project-collab-api/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store keeps large comment images in an S3-compatible object store and
// hands back plain URLs. Comments then reference the blob by URL instead
// of carrying an inline payload.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the configured object store and ensures the bucket
// exists. Returns (nil, nil) when no endpoint is configured, in which
// case images are always inlined.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.BlobEndpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.BlobEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BlobAccessKey, cfg.BlobSecretKey, ""),
		Secure: cfg.BlobUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect blob store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BlobBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BlobBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Store{client: client, bucket: cfg.BlobBucket}, nil
}

// Put uploads a payload under a unique object name and returns its URL.
func (s *Store) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := uuid.NewString() + "-" + name
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.client.EndpointURL().String() + "/" + s.bucket + "/" + object, nil
}
