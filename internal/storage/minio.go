package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"daylog/internal/config"
)

// Minio stores export files in an S3-compatible bucket.
type Minio struct {
	client     *minio.Client
	bucketName string
}

// NewMinio initializes the client and ensures the target bucket exists.
func NewMinio(cfg config.MinIOConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Minio{client: client, bucketName: cfg.Bucket}, nil
}

func (m *Minio) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, m.bucketName, key, reader, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (m *Minio) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	// GetObject is lazy; surface not-found on the first stat.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	return obj, nil
}

func (m *Minio) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (m *Minio) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	objCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var result []ObjectMeta
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		result = append(result, ObjectMeta{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return result, nil
}

// PresignedURL builds a limited-lifetime download link; only available on
// the minio backend.
func (m *Minio) PresignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucketName, key, duration, nil)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", key, err)
	}
	return presignedURL.String(), nil
}

// isNoSuchKey reports whether an error clearly means the object is absent
// (S3/MinIO: NoSuchKey/NotFound).
func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
	}

	// Some gateways wrap the error as a plain string.
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist") ||
		strings.Contains(lower, "not found")
}
