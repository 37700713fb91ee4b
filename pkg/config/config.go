package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/williamokano/gfs_rotator/pkg/rotation"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

const (
	DefaultDaily         = 7
	DefaultWeekly        = 4
	DefaultMonthly       = 12
	DefaultMaxConcurrent = 3
	DefaultMaxAgeDays    = 30
)

// GFSConfig holds the grandfather-father-son retention counts. Fields are
// pointers so a database section can override the global one field by field.
type GFSConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
	Daily   *int  `json:"daily,omitempty"`   // newest backups to keep
	Weekly  *int  `json:"weekly,omitempty"`  // ISO weeks to keep one backup of
	Monthly *int  `json:"monthly,omitempty"` // calendar months to keep one backup of
	MinKeep *int  `json:"min_keep,omitempty"`
}

// LegacyConfig is the age-based retention used when GFS is disabled
type LegacyConfig struct {
	MaxAgeDays int `json:"max_age_days,omitempty"`
}

// StorageConfig lists the destinations backups are written to
type StorageConfig struct {
	Destinations []storage.Config `json:"destinations,omitempty"`
}

// DatabaseConfig defines configuration for a single database
type DatabaseConfig struct {
	Name         string    `json:"name"`
	Destinations []string  `json:"destinations,omitempty"` // destination names, empty means all
	GFS          GFSConfig `json:"gfs,omitempty"`          // optional, overrides global values
}

// Config is the root configuration structure
type Config struct {
	BackupDir     string           `json:"backup_dir"`
	ManifestDir   string           `json:"manifest_dir,omitempty"`
	MaxConcurrent int              `json:"max_concurrent,omitempty"` // default: 3
	LogLevel      string           `json:"log_level,omitempty"`      // debug, info, warn, error (default: info)
	LogFormat     string           `json:"log_format,omitempty"`     // json, console (default: json)
	Schedule      string           `json:"schedule,omitempty"`       // cron expression used by serve
	GFS           GFSConfig        `json:"gfs,omitempty"`
	Legacy        LegacyConfig     `json:"legacy,omitempty"`
	Storage       StorageConfig    `json:"storage,omitempty"`
	Databases     []DatabaseConfig `json:"databases"`
}

// merge returns g with every unset field taken from base
func (g GFSConfig) merge(base GFSConfig) GFSConfig {
	if g.Enabled == nil {
		g.Enabled = base.Enabled
	}
	if g.Daily == nil {
		g.Daily = base.Daily
	}
	if g.Weekly == nil {
		g.Weekly = base.Weekly
	}
	if g.Monthly == nil {
		g.Monthly = base.Monthly
	}
	if g.MinKeep == nil {
		g.MinKeep = base.MinKeep
	}
	return g
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

// Database returns the configuration of the named database
func (c *Config) Database(name string) (DatabaseConfig, bool) {
	for _, db := range c.Databases {
		if db.Name == name {
			return db, true
		}
	}
	return DatabaseConfig{}, false
}

// Plan builds the retention plan of a database, applying its overrides on top
// of the global gfs section and the defaults
func (c *Config) Plan(db DatabaseConfig) rotation.Plan {
	gfs := db.GFS.merge(c.GFS)

	enabled := true
	if gfs.Enabled != nil {
		enabled = *gfs.Enabled
	}

	return rotation.Plan{
		GFS: enabled,
		Policy: rotation.Policy{
			Daily:   intOr(gfs.Daily, DefaultDaily),
			Weekly:  intOr(gfs.Weekly, DefaultWeekly),
			Monthly: intOr(gfs.Monthly, DefaultMonthly),
		},
		MinKeep: intOr(gfs.MinKeep, 0),
		MaxAge:  c.GetMaxAge(),
	}
}

// DestinationsFor returns the enabled storage destinations of a database.
// A database without an explicit list uses every enabled destination.
func (c *Config) DestinationsFor(db DatabaseConfig) ([]storage.Config, error) {
	if len(db.Destinations) == 0 {
		var all []storage.Config
		for _, d := range c.Storage.Destinations {
			if d.Enabled {
				all = append(all, d)
			}
		}
		return all, nil
	}

	byName := make(map[string]storage.Config, len(c.Storage.Destinations))
	for _, d := range c.Storage.Destinations {
		byName[d.Name] = d
	}

	out := make([]storage.Config, 0, len(db.Destinations))
	for _, name := range db.Destinations {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("database %s references unknown destination %s", db.Name, name)
		}
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out, nil
}

// Validate checks the semantic rules the schema cannot express
func (c *Config) Validate() error {
	var errs []error

	if c.BackupDir == "" && len(c.Storage.Destinations) == 0 {
		errs = append(errs, errors.New("either backup_dir or storage.destinations is required"))
	}

	errs = append(errs, c.GFS.validate("gfs")...)
	if c.Legacy.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("legacy.max_age_days must not be negative, got %d", c.Legacy.MaxAgeDays))
	}
	switch c.GetLogLevel() {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level %s (expected: debug, info, warn, error)", c.LogLevel))
	}
	switch c.GetLogFormat() {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %s (expected: json, console)", c.LogFormat))
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid cron schedule %q: %w", c.Schedule, err))
		}
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent must not be negative, got %d", c.MaxConcurrent))
	}

	names := make(map[string]bool, len(c.Storage.Destinations))
	for _, d := range c.Storage.Destinations {
		if names[d.Name] {
			errs = append(errs, fmt.Errorf("duplicate destination name %s", d.Name))
		}
		names[d.Name] = true
	}

	seen := make(map[string]bool, len(c.Databases))
	for _, db := range c.Databases {
		if seen[db.Name] {
			errs = append(errs, fmt.Errorf("duplicate database %s", db.Name))
		}
		seen[db.Name] = true

		errs = append(errs, db.GFS.validate("databases."+db.Name+".gfs")...)
		if _, err := c.DestinationsFor(db); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (g GFSConfig) validate(prefix string) []error {
	var errs []error
	check := func(field string, v *int) {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%s.%s must not be negative, got %d", prefix, field, *v))
		}
	}
	check("daily", g.Daily)
	check("weekly", g.Weekly)
	check("monthly", g.Monthly)
	check("min_keep", g.MinKeep)
	return errs
}

// GetMaxConcurrent returns the number of parallel rotations (defaults to 3)
func (c *Config) GetMaxConcurrent() int {
	if c.MaxConcurrent > 0 {
		return c.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

// GetMaxAge returns the age limit of the legacy retention
func (c *Config) GetMaxAge() time.Duration {
	days := c.Legacy.MaxAgeDays
	if days == 0 {
		days = DefaultMaxAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetLogLevel returns the log level (defaults to info)
func (c *Config) GetLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return "info"
}

// GetLogFormat returns the log format (defaults to json)
func (c *Config) GetLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	return "json"
}
