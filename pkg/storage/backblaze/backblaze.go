package backblaze

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/kurin/blazer/b2"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Backend stores backups in a Backblaze B2 bucket
type Backend struct {
	name   string
	bucket *b2.Bucket
	prefix string
	retry  storage.RetryConfig
}

func init() {
	storage.RegisterBackend("backblaze", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new Backblaze B2 backend
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	b2Cfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, err
	}

	client, err := b2.NewClient(ctx, b2Cfg.AccountID, b2Cfg.ApplicationKey)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", errors.Join(storage.ErrAuthFailed, err))
	}

	bucket, err := client.Bucket(ctx, b2Cfg.BucketName)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "get bucket", err)
	}

	prefix := strings.Trim(b2Cfg.Prefix, "/")
	if prefix == "" {
		prefix = strings.Trim(cfg.BaseDir, "/")
	}

	return &Backend{
		name:   cfg.Name,
		bucket: bucket,
		prefix: prefix,
		retry:  storage.DefaultRetryConfig(),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "backblaze" }

func (b *Backend) key(rel string) string {
	return path.Join(b.prefix, rel)
}

// Write uploads a file to B2
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, b.retry, func() error {
		file, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer file.Close()

		writer := b.bucket.Object(b.key(destPath)).NewWriter(ctx)
		if _, err := io.Copy(writer, file); err != nil {
			writer.Close()
			return storage.WrapError(b.name, "upload", err)
		}
		if err := writer.Close(); err != nil {
			return storage.WrapError(b.name, "upload", err)
		}
		return nil
	})
}

// Delete removes every version of an object from B2
func (b *Backend) Delete(ctx context.Context, objectPath string) error {
	if err := b.bucket.Object(b.key(objectPath)).Delete(ctx); err != nil {
		return storage.WrapError(b.name, "delete", mapError(err))
	}
	return nil
}

// List returns objects matching pattern, newest first
func (b *Backend) List(ctx context.Context, pattern string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo

	iter := b.bucket.List(ctx, b2.ListPrefix(b.key(storage.ListPrefix(pattern))))
	for iter.Next() {
		obj := iter.Object()

		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Name(), b.prefix), "/")
		if !storage.MatchPattern(pattern, rel) {
			continue
		}

		attrs, err := obj.Attrs(ctx)
		if err != nil || attrs.Size == 0 {
			continue
		}

		files = append(files, storage.FileInfo{
			Path:    rel,
			Size:    attrs.Size,
			ModTime: attrs.UploadTimestamp,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, storage.WrapError(b.name, "list", err)
	}

	storage.SortNewestFirst(files)

	return files, nil
}

// Stat returns object metadata
func (b *Backend) Stat(ctx context.Context, objectPath string) (*storage.FileInfo, error) {
	attrs, err := b.bucket.Object(b.key(objectPath)).Attrs(ctx)
	if err != nil {
		return nil, storage.WrapError(b.name, "stat", mapError(err))
	}

	return &storage.FileInfo{
		Path:    objectPath,
		Size:    attrs.Size,
		ModTime: attrs.UploadTimestamp,
	}, nil
}

// Exists checks if object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := b.Stat(ctx, objectPath)
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op, the B2 client holds no open connections between calls
func (b *Backend) Close() error {
	return nil
}

func mapError(err error) error {
	if b2.IsNotExist(err) {
		return storage.ErrNotFound
	}
	return err
}
