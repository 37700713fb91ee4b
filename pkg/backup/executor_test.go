package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

func intPtr(v int) *int { return &v }

func writeArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))
	return path
}

// seedBackups writes count backups of db into dir, one per day, the newest at newest
func seedBackups(t *testing.T, dir, db string, newest time.Time, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		name := rotation.GenerateBackupFilename(dir, db, newest.AddDate(0, 0, -i))
		require.NoError(t, os.WriteFile(name, []byte("old"), 0o644))
	}
}

func listBackups(t *testing.T, dir, db string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, rotation.BackupPattern(db)))
	require.NoError(t, err)
	return matches
}

func TestPush_UploadsAndRotates(t *testing.T) {
	primary := t.TempDir()
	secondary := t.TempDir()

	cfg := &config.Config{
		GFS: config.GFSConfig{Daily: intPtr(3), Weekly: intPtr(0), Monthly: intPtr(0)},
		Storage: config.StorageConfig{Destinations: []storage.Config{
			{Name: "primary", Type: "local", Enabled: true, BaseDir: primary},
			{Name: "secondary", Type: "local", Enabled: true, BaseDir: secondary},
		}},
		Databases: []config.DatabaseConfig{{Name: "app"}},
	}

	now := time.Date(2025, 6, 30, 3, 0, 0, 0, time.UTC)
	seedBackups(t, primary, "app", now.AddDate(0, 0, -1), 5)

	result := Push(context.Background(), cfg, cfg.Databases[0], writeArchive(t), now, zerolog.Nop())

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, "app--2025-06-30T03-00-00.backup", result.Object)
	require.Len(t, result.BackendResults, 2)
	assert.Len(t, result.Reports, 2)

	assert.FileExists(t, filepath.Join(primary, result.Object))
	assert.FileExists(t, filepath.Join(secondary, result.Object))
	assert.Len(t, listBackups(t, primary, "app"), 3)
	assert.Len(t, listBackups(t, secondary, "app"), 1)
}

func TestPush_DefaultLocalBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{BackupDir: dir, Databases: []config.DatabaseConfig{{Name: "app"}}}

	result := Push(context.Background(), cfg, cfg.Databases[0], writeArchive(t), time.Now(), zerolog.Nop())

	require.NoError(t, result.Error)
	require.Len(t, result.BackendResults, 1)
	assert.Equal(t, DefaultLocalName, result.BackendResults[0].BackendName)
	assert.Len(t, listBackups(t, dir, "app"), 1)
}

func TestPush_MissingArchiveNeverRotates(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		BackupDir: dir,
		GFS:       config.GFSConfig{Daily: intPtr(1), Weekly: intPtr(0), Monthly: intPtr(0)},
		Databases: []config.DatabaseConfig{{Name: "app"}},
	}
	seedBackups(t, dir, "app", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 4)

	result := Push(context.Background(), cfg, cfg.Databases[0], filepath.Join(t.TempDir(), "missing"), time.Now(), zerolog.Nop())

	assert.False(t, result.Success)
	assert.ErrorContains(t, result.Error, "archive not readable")
	assert.Len(t, listBackups(t, dir, "app"), 4)
}

func TestPush_AllUploadsFailedNeverRotates(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		BackupDir: dir,
		GFS:       config.GFSConfig{Daily: intPtr(1), Weekly: intPtr(0), Monthly: intPtr(0)},
		Databases: []config.DatabaseConfig{{Name: "app"}},
	}
	seedBackups(t, dir, "app", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 4)
	seeded := listBackups(t, dir, "app")

	// the object name collides with a directory, so the upload cannot be renamed into place
	now := time.Date(2025, 6, 30, 3, 0, 0, 0, time.UTC)
	require.NoError(t, os.Mkdir(rotation.GenerateBackupFilename(dir, "app", now), 0o755))

	result := Push(context.Background(), cfg, cfg.Databases[0], writeArchive(t), now, zerolog.Nop())

	assert.False(t, result.Success)
	assert.ErrorContains(t, result.Error, "all backends failed")
	assert.Empty(t, result.Reports)
	for _, f := range seeded {
		assert.FileExists(t, f)
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("no storage at all", func(t *testing.T) {
		_, err := OpenBackends(ctx, &config.Config{}, config.DatabaseConfig{Name: "app"}, zerolog.Nop())
		assert.ErrorContains(t, err, "no storage destinations configured")
	})

	t.Run("only disabled destinations", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Destinations: []storage.Config{
			{Name: "off", Type: "local", Enabled: false, BaseDir: t.TempDir()},
		}}}
		_, err := OpenBackends(ctx, cfg, config.DatabaseConfig{Name: "app"}, zerolog.Nop())
		assert.ErrorContains(t, err, "no enabled storage destinations")
	})

	t.Run("selected destinations", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Destinations: []storage.Config{
			{Name: "a", Type: "local", Enabled: true, BaseDir: t.TempDir()},
			{Name: "b", Type: "local", Enabled: true, BaseDir: t.TempDir()},
		}}}
		backends, err := OpenBackends(ctx, cfg, config.DatabaseConfig{Name: "app", Destinations: []string{"b"}}, zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, backends, 1)
		assert.Equal(t, "b", backends[0].Name())
		assert.Equal(t, "local", backends[0].Type())
	})

	t.Run("invalid backend options", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Destinations: []storage.Config{
			{Name: "s3", Type: "s3", Enabled: true, Options: map[string]interface{}{"region": "us-east-1"}},
		}}}
		_, err := OpenBackends(ctx, cfg, config.DatabaseConfig{Name: "app"}, zerolog.Nop())
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})
}
