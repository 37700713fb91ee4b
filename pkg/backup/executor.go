package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Result represents the outcome of pushing one archive
type Result struct {
	Database       string
	Object         string // object name the archive was stored under
	Success        bool
	BackendResults []storage.Result
	Reports        []rotation.Report
	Error          error
	Duration       time.Duration
}

// Push uploads an archive to every destination of a database under its
// generated name, then rotates the destinations that accepted it. Rotation
// never runs when every upload failed, so old backups are not deleted
// without a new one in place.
func Push(ctx context.Context, cfg *config.Config, db config.DatabaseConfig, archivePath string, timestamp time.Time, logger zerolog.Logger) Result {
	start := time.Now()
	object := rotation.GenerateBackupFilename("", db.Name, timestamp)

	result := Result{
		Database: db.Name,
		Object:   object,
	}

	dbLog := logger.With().
		Str("database", db.Name).
		Str("object", object).
		Logger()

	info, err := os.Stat(archivePath)
	if err != nil {
		result.Error = fmt.Errorf("archive not readable: %w", err)
		result.Duration = time.Since(start)
		dbLog.Error().Err(err).Str("archive", archivePath).Msg("cannot push archive")
		return result
	}
	if info.Size() == 0 {
		result.Error = fmt.Errorf("archive %s is empty", archivePath)
		result.Duration = time.Since(start)
		dbLog.Error().Str("archive", archivePath).Msg("archive is empty (0 bytes)")
		return result
	}

	backends, err := OpenBackends(ctx, cfg, db, dbLog)
	if err != nil {
		result.Error = fmt.Errorf("failed to initialize storage backends: %w", err)
		result.Duration = time.Since(start)
		dbLog.Error().Err(err).Msg("cannot initialize storage backends")
		return result
	}
	defer func() {
		if err := storage.CloseAll(backends); err != nil {
			dbLog.Warn().Err(err).Msg("failed to close storage backends")
		}
	}()

	dbLog.Info().
		Int64("size_bytes", info.Size()).
		Int("backend_count", len(backends)).
		Msg("uploading backup to destinations")

	uploader := storage.NewMultiUploader(dbLog)
	result.BackendResults = uploader.Upload(ctx, backends, archivePath, object)

	if !storage.AnySucceeded(result.BackendResults) {
		var errs []error
		for _, r := range result.BackendResults {
			errs = append(errs, storage.WrapError(r.BackendName, "upload", r.Error))
		}
		result.Error = fmt.Errorf("all backends failed to upload backup: %w", errors.Join(errs...))
		result.Duration = time.Since(start)
		dbLog.Error().Err(result.Error).Msg("skipping rotation - no destination stored the backup")
		return result
	}

	plan := cfg.Plan(db)
	opts := rotation.Options{
		RunID: uuid.NewString(),
		Retry: storage.DefaultRetryConfig(),
	}

	var errs []error
	for i, backend := range backends {
		upload := result.BackendResults[i]
		if !upload.Success {
			errs = append(errs, storage.WrapError(upload.BackendName, "upload", upload.Error))
			dbLog.Warn().
				Str("backend", backend.Name()).
				Msg("skipping rotation on backend that did not store the backup")
			continue
		}

		report, err := rotation.Rotate(ctx, rotation.NewBackendStore(backend, dbLog), db.Name, plan, opts, dbLog)
		if err != nil {
			// Don't fail the push if rotation fails on one backend
			dbLog.Error().Err(err).Str("backend", backend.Name()).Msg("rotation failed for backend")
			errs = append(errs, err)
			continue
		}
		result.Reports = append(result.Reports, report)
	}

	result.Success = true
	result.Error = errors.Join(errs...)
	result.Duration = time.Since(start)

	dbLog.Info().
		Int("rotated", len(result.Reports)).
		Dur("duration", result.Duration).
		Msg("backup pushed")

	return result
}
