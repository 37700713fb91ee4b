package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/gfs_rotator/pkg/rotation"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// FileName is the manifest file inside every backup directory
const FileName = "manifest.json"

// Manifest describes one backup directory
type Manifest struct {
	ID        string   `json:"id"`
	Database  string   `json:"database"`
	Timestamp string   `json:"timestamp"` // RFC3339
	Files     []string `json:"files,omitempty"`
	SizeBytes int64    `json:"size_bytes"`
}

// CreatedAt parses the manifest timestamp
func (m Manifest) CreatedAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q in manifest %s: %w", m.Timestamp, m.ID, err)
	}
	return t, nil
}

// Store keeps one directory per backup under root, each with a manifest.json.
// It implements rotation.Store.
type Store struct {
	root   string
	logger zerolog.Logger
}

// Open returns the store rooted at root. The directory must exist.
func Open(root string, logger zerolog.Logger) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("manifest store %s is not a directory", root)
	}
	return &Store{root: root, logger: logger}, nil
}

func (s *Store) Name() string { return "manifest:" + s.root }

// Manifests reads every manifest under root. Directories without a manifest
// are ignored; unreadable manifests are skipped with a warning. An empty
// database returns all of them.
func (s *Store) Manifests(ctx context.Context, database string) ([]Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest store: %w", err)
	}

	var out []Manifest
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(s.root, entry.Name(), FileName)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("manifest", path).Msg("skipping unreadable manifest")
			continue
		}

		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			s.logger.Warn().Err(err).Str("manifest", path).Msg("skipping malformed manifest")
			continue
		}
		// the directory name is the backup ID Remove acts on
		if m.ID == "" {
			m.ID = entry.Name()
		}
		if m.ID != entry.Name() {
			s.logger.Warn().
				Str("manifest", path).
				Str("id", m.ID).
				Str("dir", entry.Name()).
				Msg("skipping manifest whose id does not match its directory")
			continue
		}
		if database != "" && m.Database != database {
			continue
		}

		out = append(out, m)
	}

	return out, nil
}

// List returns the backups of database as classifier input. Manifests with an
// unparseable timestamp are skipped.
func (s *Store) List(ctx context.Context, database string) ([]rotation.Backup, error) {
	manifests, err := s.Manifests(ctx, database)
	if err != nil {
		return nil, err
	}

	backups := make([]rotation.Backup, 0, len(manifests))
	for _, m := range manifests {
		created, err := m.CreatedAt()
		if err != nil {
			s.logger.Warn().Err(err).Str("id", m.ID).Msg("skipping manifest")
			continue
		}
		backups = append(backups, rotation.Backup{ID: m.ID, CreatedAt: created})
	}

	return backups, nil
}

// Remove deletes the backup directory with the given ID
func (s *Store) Remove(ctx context.Context, id string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("backup %s: %w", id, storage.ErrNotFound)
		}
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove backup %s: %w", id, err)
	}
	return nil
}

// Write creates the backup directory and its manifest
func (s *Store) Write(m Manifest) error {
	if _, err := m.CreatedAt(); err != nil {
		return err
	}

	dir, err := s.dir(m.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}

// dir resolves an ID to its directory, refusing IDs that leave the root
func (s *Store) dir(id string) (string, error) {
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || id == ".." {
		return "", fmt.Errorf("invalid backup id %q: %w", id, storage.ErrInvalidConfig)
	}
	return filepath.Join(s.root, id), nil
}
