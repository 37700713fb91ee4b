package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
)

// DefaultSchedule rotates once a day at 3 AM
const DefaultSchedule = "0 3 * * *"

// ErrRunInProgress is returned when a rotation is requested while one is running
var ErrRunInProgress = errors.New("rotation already in progress")

// Daemon runs RotateAll on a cron schedule, one run at a time. The
// configuration can be swapped while it runs.
type Daemon struct {
	mu       sync.RWMutex
	cfg      *config.Config
	schedule string
	entry    cron.EntryID

	run      sync.Mutex
	cron     *cron.Cron
	logger   zerolog.Logger
	recorder Recorder
	override string
}

// NewDaemon creates a daemon. A non-empty schedule takes precedence over the
// configured one.
func NewDaemon(cfg *config.Config, schedule string, logger zerolog.Logger, recorder Recorder) *Daemon {
	return &Daemon{
		cfg:      cfg,
		override: schedule,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "daemon").Logger(),
		recorder: recorder,
	}
}

func (d *Daemon) scheduleOf(cfg *config.Config) string {
	switch {
	case d.override != "":
		return d.override
	case cfg.Schedule != "":
		return cfg.Schedule
	default:
		return DefaultSchedule
	}
}

// Start schedules rotation runs and blocks until ctx is done. Running jobs are
// waited for before returning.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if err := d.reschedule(ctx, d.scheduleOf(d.cfg)); err != nil {
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	d.cron.Start()
	d.logger.Info().Str("schedule", d.Schedule()).Msg("rotation scheduler started")

	<-ctx.Done()

	stopped := d.cron.Stop()
	<-stopped.Done()
	d.logger.Info().Msg("rotation scheduler stopped")

	return nil
}

// reschedule replaces the cron entry. The caller holds d.mu.
func (d *Daemon) reschedule(ctx context.Context, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	if schedule == d.schedule && d.entry != 0 {
		return nil
	}

	id, err := d.cron.AddFunc(schedule, func() {
		if _, err := d.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
			d.logger.Error().Err(err).Msg("scheduled rotation finished with errors")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rotation: %w", err)
	}

	if d.entry != 0 {
		d.cron.Remove(d.entry)
	}
	d.entry = id
	d.schedule = schedule

	return nil
}

// UpdateConfig swaps the configuration used by the next run and reschedules
// when the schedule changed
func (d *Daemon) UpdateConfig(ctx context.Context, cfg *config.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.entry != 0 {
		if err := d.reschedule(ctx, d.scheduleOf(cfg)); err != nil {
			return err
		}
	}
	d.cfg = cfg

	d.logger.Info().Str("schedule", d.schedule).Int("databases", len(cfg.Databases)).Msg("configuration updated")
	return nil
}

// Config returns the configuration of the next run
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Schedule returns the active cron expression
func (d *Daemon) Schedule() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.schedule
}

// RunOnce rotates everything now. It returns ErrRunInProgress without doing
// anything when another run has not finished.
func (d *Daemon) RunOnce(ctx context.Context) ([]rotation.Report, error) {
	if !d.run.TryLock() {
		d.logger.Warn().Msg("previous rotation still running, skipping")
		return nil, ErrRunInProgress
	}
	defer d.run.Unlock()

	return RotateAll(ctx, d.Config(), RotateOptions{}, d.logger, d.recorder)
}
