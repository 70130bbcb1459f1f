// Package storage persists uploaded file bytes and hands back the path that
// the user record keeps.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wichananm65/account-service/internal/config"
)

// Store saves the content of one uploaded file.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

// FromConfig builds the store selected by cfg.Driver.
func FromConfig(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.StorageLocal:
		return NewLocalStore(cfg.UploadDir), nil
	case config.StorageS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectName keeps the client's extension but never the client's name.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}
