package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits after the last write before reloading
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads the configuration file whenever it changes and hands the
// result to onReload. The parent directory is watched so editors that replace
// the file atomically are handled. An invalid file is logged and ignored; the
// caller keeps its previous configuration. Watch blocks until ctx is done.
func Watch(ctx context.Context, configFile string, debounce time.Duration, logger zerolog.Logger, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(configFile)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	log := logger.With().Str("config", abs).Logger()
	log.Info().Dur("debounce", debounce).Msg("watching configuration file")

	reload := func() {
		cfg, err := ParseConfig(abs)
		if err != nil {
			log.Error().Err(err).Msg("configuration reload failed, keeping previous configuration")
			return
		}
		log.Info().Msg("configuration reloaded")
		onReload(cfg)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			log.Debug().Str("op", ev.Op.String()).Msg("configuration file changed")

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("fsnotify error")
		}
	}
}
