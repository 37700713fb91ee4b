package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/manifest"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Recorder receives every rotation report. *metrics.Metrics implements it.
type Recorder interface {
	Observe(report rotation.Report)
}

// RotateOptions select what RotateAll works on
type RotateOptions struct {
	Database    string // empty means every configured database
	Destination string // empty means every destination of the database
	DryRun      bool
	Now         time.Time
}

type target struct {
	database string
	plan     rotation.Plan
	store    rotation.Store
}

// RotateAll rotates every selected database on each of its destinations, and
// on the manifest store when manifest_dir is set. Targets run in parallel,
// bounded by max_concurrent. A failing target does not stop the others: all
// reports are returned, in target order, together with the joined errors.
func RotateAll(ctx context.Context, cfg *config.Config, opts RotateOptions, logger zerolog.Logger, recorder Recorder) ([]rotation.Report, error) {
	runID := uuid.NewString()
	log := logger.With().Str("run_id", runID).Logger()

	var errs []error

	databases := cfg.Databases
	if opts.Database != "" {
		db, ok := cfg.Database(opts.Database)
		if !ok {
			return nil, fmt.Errorf("database %s is not configured", opts.Database)
		}
		databases = []config.DatabaseConfig{db}
	}

	if len(databases) == 0 {
		log.Warn().Msg("no databases to rotate")
		return nil, nil
	}

	var manifests *manifest.Store
	if cfg.ManifestDir != "" && opts.Destination == "" {
		store, err := manifest.Open(cfg.ManifestDir, log)
		if err != nil {
			errs = append(errs, err)
		} else {
			manifests = store
		}
	}

	var targets []target
	var opened []storage.Backend
	defer func() {
		if err := storage.CloseAll(opened); err != nil {
			log.Warn().Err(err).Msg("failed to close storage backends")
		}
	}()

	for _, db := range databases {
		plan := cfg.Plan(db)

		backends, err := OpenBackends(ctx, cfg, db, log)
		if err != nil {
			errs = append(errs, fmt.Errorf("database %s: %w", db.Name, err))
			continue
		}
		opened = append(opened, backends...)

		for _, b := range backends {
			if opts.Destination != "" && b.Name() != opts.Destination {
				continue
			}
			targets = append(targets, target{database: db.Name, plan: plan, store: rotation.NewBackendStore(b, log)})
		}
		if manifests != nil {
			targets = append(targets, target{database: db.Name, plan: plan, store: manifests})
		}
	}

	maxConcurrent := cfg.GetMaxConcurrent()
	log.Info().
		Int("databases", len(databases)).
		Int("targets", len(targets)).
		Int("max_concurrent", maxConcurrent).
		Bool("dry_run", opts.DryRun).
		Msg("starting parallel rotation")

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gCtx := errgroup.WithContext(ctx)

	reports := make([]rotation.Report, len(targets))
	var mu sync.Mutex

	for i, tgt := range targets {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return fmt.Errorf("failed to acquire semaphore: %w", err)
			}
			defer sem.Release(1)

			rotateOpts := rotation.Options{
				RunID:  runID,
				DryRun: opts.DryRun,
				Now:    opts.Now,
				Retry:  storage.DefaultRetryConfig(),
			}

			report, err := rotation.Rotate(gCtx, tgt.store, tgt.database, tgt.plan, rotateOpts, log)
			reports[i] = report

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, fmt.Errorf("rotation of %s on %s failed: %w", tgt.database, tgt.store.Name(), err))
				return nil
			}
			if len(report.Failed) > 0 {
				errs = append(errs, fmt.Errorf("%d backups of %s could not be deleted from %s", len(report.Failed), tgt.database, tgt.store.Name()))
			}
			if recorder != nil {
				recorder.Observe(report)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	deleted, failed := 0, 0
	for _, r := range reports {
		deleted += len(r.Deleted)
		failed += len(r.Failed)
	}
	log.Info().
		Int("targets", len(targets)).
		Int("deleted", deleted).
		Int("failed", failed).
		Msg("parallel rotation completed")

	return reports, errors.Join(errs...)
}
