package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Store is where backups of a database are listed and removed
type Store interface {
	// Name identifies the store in logs and reports
	Name() string
	// List returns the backups of database, in any order
	List(ctx context.Context, database string) ([]Backup, error)
	// Remove deletes one backup. A missing backup yields storage.ErrNotFound.
	Remove(ctx context.Context, id string) error
}

// Plan selects which backups a rotation deletes
type Plan struct {
	// GFS enables tier classification. When false the age-based MaxAge rule applies.
	GFS     bool
	Policy  Policy
	MinKeep int
	MaxAge  time.Duration
}

// Classify returns the GFS classification, or nil for age-based plans
func (p Plan) Classify(backups []Backup) []Classification {
	if !p.GFS {
		return nil
	}
	return Classify(backups, p.Policy)
}

// Select returns the backups to delete, oldest first
func (p Plan) Select(backups []Backup, now time.Time) []Classification {
	if p.GFS {
		return SelectPrunable(backups, p.Policy, p.MinKeep)
	}
	return SelectExpired(backups, p.MaxAge, now, p.MinKeep)
}

// Options tune a single rotation run
type Options struct {
	RunID  string
	DryRun bool
	// Now is the reference time for age-based plans. Zero means time.Now().
	Now   time.Time
	Retry storage.RetryConfig
}

// Report is the outcome of a rotation run against one store
type Report struct {
	RunID      string
	Database   string
	Store      string
	DryRun     bool
	Total      int
	Backups    []Backup
	Classified []Classification
	Selected   []Classification
	Deleted    []string
	Failed     map[string]error
	Started    time.Time
	Duration   time.Duration
}

// Kept is the number of backups left after the run
func (r Report) Kept() int {
	return r.Total - len(r.Deleted)
}

// Rotate lists the backups of database in store, selects what plan allows to
// delete and removes it, oldest first. A failed removal is logged and recorded
// in the report without stopping the run; a backup that is already gone counts
// as deleted. Nothing is removed in dry-run mode.
func Rotate(ctx context.Context, store Store, database string, plan Plan, opts Options, logger zerolog.Logger) (Report, error) {
	start := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = start
	}

	log := logger.With().
		Str("database", database).
		Str("store", store.Name()).
		Logger()

	report := Report{
		RunID:    opts.RunID,
		Database: database,
		Store:    store.Name(),
		DryRun:   opts.DryRun,
		Failed:   make(map[string]error),
		Started:  start,
	}

	backups, err := store.List(ctx, database)
	if err != nil {
		return report, fmt.Errorf("failed to list backups in %s: %w", store.Name(), err)
	}

	report.Total = len(backups)
	report.Backups = backups
	report.Classified = plan.Classify(backups)
	report.Selected = plan.Select(backups, now)

	if report.Classified != nil {
		counts := CountByTier(report.Classified)
		log.Info().
			Int("total", report.Total).
			Int("daily", counts[TierDaily]).
			Int("weekly", counts[TierWeekly]).
			Int("monthly", counts[TierMonthly]).
			Int("prunable", counts[TierPrunable]).
			Int("selected", len(report.Selected)).
			Msg("classified backups")
	} else {
		log.Info().
			Int("total", report.Total).
			Dur("max_age", plan.MaxAge).
			Int("selected", len(report.Selected)).
			Msg("applied age-based retention")
	}

	if len(report.Selected) == 0 {
		log.Info().Msg("no backups to delete, within retention limits")
		report.Duration = time.Since(start)
		return report, nil
	}

	for _, c := range report.Selected {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		entry := log.With().
			Str("backup", c.ID).
			Time("created_at", c.CreatedAt).
			Str("reason", c.Reason).
			Logger()

		if opts.DryRun {
			entry.Info().Msg("would delete backup (dry run)")
			continue
		}

		err := storage.WithRetry(ctx, opts.Retry, func() error {
			return store.Remove(ctx, c.ID)
		})
		switch {
		case err == nil:
			entry.Info().Msg("deleted backup")
			report.Deleted = append(report.Deleted, c.ID)
		case storage.IsNotFound(err):
			entry.Debug().Msg("backup already removed")
			report.Deleted = append(report.Deleted, c.ID)
		default:
			entry.Error().Err(err).Msg("failed to delete backup")
			report.Failed[c.ID] = err
		}
	}

	report.Duration = time.Since(start)

	log.Info().
		Int("deleted", len(report.Deleted)).
		Int("failed", len(report.Failed)).
		Int("kept", report.Kept()).
		Bool("dry_run", opts.DryRun).
		Dur("duration", report.Duration).
		Msg("backup rotation completed")

	return report, nil
}
