package rotation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// BackendStore exposes a storage backend as a rotation Store. Backup IDs are
// object paths relative to the backend root; timestamps come from the names.
type BackendStore struct {
	backend storage.Backend
	logger  zerolog.Logger
}

// NewBackendStore wraps a storage backend
func NewBackendStore(backend storage.Backend, logger zerolog.Logger) *BackendStore {
	return &BackendStore{backend: backend, logger: logger}
}

func (s *BackendStore) Name() string { return s.backend.Name() }

// List returns the backups of database. Objects whose name does not parse, or
// that belong to another database sharing the prefix, are skipped.
func (s *BackendStore) List(ctx context.Context, database string) ([]Backup, error) {
	pattern := BackupPattern(database)

	files, err := s.backend.List(ctx, pattern)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("backend", s.backend.Name()).
		Str("pattern", pattern).
		Int("file_count", len(files)).
		Msg("found backup files")

	backups := make([]Backup, 0, len(files))
	for _, f := range files {
		name, err := ParseBackupFilename(f.Path)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("backend", s.backend.Name()).
				Str("file", f.Path).
				Msg("skipping file with invalid name")
			continue
		}
		if !name.BelongsTo(database) {
			continue
		}

		backups = append(backups, Backup{ID: f.Path, CreatedAt: name.Timestamp})
	}

	return backups, nil
}

// Remove deletes the backup object
func (s *BackendStore) Remove(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}
