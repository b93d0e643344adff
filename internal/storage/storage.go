package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"daylog/internal/config"
)

// ErrNotFound is returned when an object key has no stored file.
var ErrNotFound = errors.New("object not found")

// ObjectMeta describes one stored export file.
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store keeps rendered report files. The local implementation writes to a
// durable per-device directory; the minio one targets S3-compatible
// storage for off-device durability.
type Store interface {
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent: removing a missing object is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectMeta, error)
}

// New builds the configured Store implementation.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "local":
		return NewLocal(cfg.Local.Dir)
	case "minio":
		return NewMinio(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
