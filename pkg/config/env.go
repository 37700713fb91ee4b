package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from the environment:
// GFS_ENABLED, GFS_DAILY, GFS_WEEKLY, GFS_MONTHLY, GFS_MIN_KEEP, LOG_LEVEL and LOG_FORMAT.
// GFS variables replace the global gfs section; database overrides still win.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	if v, ok := lookup("GFS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GFS_ENABLED: %w", err))
		} else {
			cfg.GFS.Enabled = &b
		}
	}

	ints := []struct {
		key    string
		target **int
	}{
		{"GFS_DAILY", &cfg.GFS.Daily},
		{"GFS_WEEKLY", &cfg.GFS.Weekly},
		{"GFS_MONTHLY", &cfg.GFS.Monthly},
		{"GFS_MIN_KEEP", &cfg.GFS.MinKeep},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.key, err))
			continue
		}
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", e.key, n))
			continue
		}
		*e.target = &n
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return errors.Join(errs...)
}
