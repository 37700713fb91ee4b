package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Backend stores backups in a directory on the local filesystem
type Backend struct {
	name     string
	basePath string
}

func init() {
	storage.RegisterBackend("local", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New creates a local backend rooted at options.path, or base_dir when path is unset
func New(cfg storage.Config) (*Backend, error) {
	root := cfg.BaseDir
	if v, ok := cfg.Options["path"]; ok {
		p, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("option path must be a string: %w", storage.ErrInvalidConfig)
		}
		if p != "" {
			root = p
		}
	}
	if root == "" {
		return nil, storage.MissingOption("path")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	return &Backend{
		name:     cfg.Name,
		basePath: root,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "local" }

// Root returns the directory holding the backups
func (b *Backend) Root() string { return b.basePath }

// Write copies a file into the backend through a temporary file, so a
// partially written backup is never visible under its final name
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	destFullPath := filepath.Join(b.basePath, destPath)

	if err := os.MkdirAll(filepath.Dir(destFullPath), 0o755); err != nil {
		return storage.WrapError(b.name, "write", err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	defer source.Close()

	tmp := destFullPath + ".part"
	dest, err := os.Create(tmp)
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		os.Remove(tmp)
		return storage.WrapError(b.name, "write", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmp)
		return storage.WrapError(b.name, "write", err)
	}

	if err := os.Rename(tmp, destFullPath); err != nil {
		os.Remove(tmp)
		return storage.WrapError(b.name, "write", err)
	}

	return nil
}

// Delete removes a file from the backend
func (b *Backend) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(b.basePath, path)); err != nil {
		return storage.WrapError(b.name, "delete", mapError(err))
	}
	return nil
}

// List returns non-empty files matching the pattern, newest first
func (b *Backend) List(ctx context.Context, pattern string) ([]storage.FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(b.basePath, pattern))
	if err != nil {
		return nil, storage.WrapError(b.name, "list", err)
	}

	files := make([]storage.FileInfo, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() || info.Size() == 0 {
			continue
		}

		relPath, err := filepath.Rel(b.basePath, match)
		if err != nil {
			relPath = filepath.Base(match)
		}

		files = append(files, storage.FileInfo{
			Path:    filepath.ToSlash(relPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	storage.SortNewestFirst(files)

	return files, nil
}

// Stat returns metadata about a file
func (b *Backend) Stat(ctx context.Context, path string) (*storage.FileInfo, error) {
	info, err := os.Stat(filepath.Join(b.basePath, path))
	if err != nil {
		return nil, storage.WrapError(b.name, "stat", mapError(err))
	}

	return &storage.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if a file exists
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.Stat(ctx, path)
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op for local backend
func (b *Backend) Close() error {
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return storage.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", storage.ErrPermissionDenied, err)
	default:
		return err
	}
}
