package backup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/storage"

	// Import backends to register them
	_ "github.com/williamokano/gfs_rotator/pkg/storage/backblaze"
	_ "github.com/williamokano/gfs_rotator/pkg/storage/local"
	_ "github.com/williamokano/gfs_rotator/pkg/storage/s3"
	_ "github.com/williamokano/gfs_rotator/pkg/storage/ssh"
)

// DefaultLocalName names the local backend created from backup_dir
const DefaultLocalName = "default_local"

// OpenBackends creates the storage backends of a database. Without any
// configured destination a local backend on backup_dir is used.
func OpenBackends(ctx context.Context, cfg *config.Config, db config.DatabaseConfig, logger zerolog.Logger) ([]storage.Backend, error) {
	factory := storage.NewFactory()

	if len(cfg.Storage.Destinations) == 0 {
		if cfg.BackupDir == "" {
			return nil, fmt.Errorf("no storage destinations configured for database %s", db.Name)
		}

		logger.Debug().Str("backup_dir", cfg.BackupDir).Msg("no storage config, creating default local backend")
		backend, err := factory.Create(ctx, storage.Config{
			Name:    DefaultLocalName,
			Type:    "local",
			Enabled: true,
			BaseDir: cfg.BackupDir,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create default local backend: %w", err)
		}
		return []storage.Backend{backend}, nil
	}

	destinations, err := cfg.DestinationsFor(db)
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, fmt.Errorf("no enabled storage destinations found for database %s", db.Name)
	}

	backends, err := factory.CreateAll(ctx, destinations)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	logger.Debug().
		Str("database", db.Name).
		Strs("destinations", names).
		Msg("initialized storage backends")

	return backends, nil
}
