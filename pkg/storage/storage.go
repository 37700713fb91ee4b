package storage

import (
	"context"
	"time"
)

// Backend is a destination holding backup objects
type Backend interface {
	// Name returns the configured name of this destination (e.g., "local_primary", "s3_offsite")
	Name() string

	// Type returns the backend type (local, s3, backblaze, ssh)
	Type() string

	// Write uploads a local file to destPath, a path relative to the backend root
	Write(ctx context.Context, sourcePath string, destPath string) error

	// Delete removes the object at path. A missing object yields ErrNotFound.
	Delete(ctx context.Context, path string) error

	// List returns the non-empty objects whose relative path matches the glob
	// pattern (e.g., "mydb*.backup"), newest first
	List(ctx context.Context, pattern string) ([]FileInfo, error)

	// Stat returns metadata about a single object, or ErrNotFound
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases connections and sessions
	Close() error
}

// FileInfo describes a stored object
type FileInfo struct {
	Path    string    // Relative path in backend
	Size    int64     // Size in bytes
	ModTime time.Time // Last modification time
}

// Config describes one destination
type Config struct {
	Name    string                 `json:"name"`     // User-friendly name (e.g., "s3_primary")
	Type    string                 `json:"type"`     // Backend type: local, s3, backblaze, ssh
	Enabled bool                   `json:"enabled"`  // Whether this backend is active
	BaseDir string                 `json:"base_dir"` // Base directory/prefix for backups
	Options map[string]interface{} `json:"options"`  // Backend-specific options
}

// Result is the outcome of an operation against one backend
type Result struct {
	BackendName string
	BackendType string
	Success     bool
	Error       error
	Duration    time.Duration
}
