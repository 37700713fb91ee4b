package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "config.json", `{"backup_dir": "/a", "databases": []}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, zerolog.Nop(), func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// an invalid file is ignored
	require.NoError(t, os.WriteFile(path, []byte(`{"backup_dir": 1}`), 0o644))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"backup_dir": "/b", "databases": []}`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "/b", cfg.BackupDir)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}
