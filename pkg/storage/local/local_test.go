package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/williamokano/gfs_rotator/pkg/storage"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(storage.Config{Name: "local_test", Type: "local", Enabled: true, BaseDir: t.TempDir()})
	require.NoError(t, err)
	return b
}

func writeFile(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestNew(t *testing.T) {
	t.Run("path_option_overrides_base_dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "backups")
		b, err := New(storage.Config{Name: "l", BaseDir: "/ignored", Options: map[string]interface{}{"path": dir}})

		require.NoError(t, err)
		assert.Equal(t, dir, b.Root())
		assert.DirExists(t, dir)
	})

	t.Run("missing_path", func(t *testing.T) {
		_, err := New(storage.Config{Name: "l"})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("path_must_be_string", func(t *testing.T) {
		_, err := New(storage.Config{Name: "l", Options: map[string]interface{}{"path": 12}})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})
}

func TestBackend_WriteListDelete(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	src := filepath.Join(t.TempDir(), "dump.tmp")
	writeFile(t, src, "payload", time.Now())

	require.NoError(t, b.Write(ctx, src, "mydb--2025-06-01T12-00-00.backup"))

	exists, err := b.Exists(ctx, "mydb--2025-06-01T12-00-00.backup")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoFileExists(t, filepath.Join(b.Root(), "mydb--2025-06-01T12-00-00.backup.part"))

	info, err := b.Stat(ctx, "mydb--2025-06-01T12-00-00.backup")
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), info.Size)

	require.NoError(t, b.Delete(ctx, "mydb--2025-06-01T12-00-00.backup"))

	exists, err = b.Exists(ctx, "mydb--2025-06-01T12-00-00.backup")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackend_DeleteMissing(t *testing.T) {
	b := newBackend(t)

	err := b.Delete(context.Background(), "gone.backup")

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_List(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeFile(t, filepath.Join(b.Root(), "mydb--2025-06-01T12-00-00.backup"), "x", base)
	writeFile(t, filepath.Join(b.Root(), "mydb--2025-06-02T12-00-00.backup"), "x", base.Add(24*time.Hour))
	writeFile(t, filepath.Join(b.Root(), "mydb--2025-06-03T12-00-00.backup"), "", base.Add(48*time.Hour))
	writeFile(t, filepath.Join(b.Root(), "other--2025-06-01T12-00-00.backup"), "x", base)
	require.NoError(t, os.Mkdir(filepath.Join(b.Root(), "mydb.backup"), 0o755))

	files, err := b.List(ctx, "mydb*.backup")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "mydb--2025-06-02T12-00-00.backup", files[0].Path)
	assert.Equal(t, "mydb--2025-06-01T12-00-00.backup", files[1].Path)
}

func TestFactory_CreatesRegisteredLocalBackend(t *testing.T) {
	assert.Contains(t, storage.RegisteredTypes(), "local")

	f := storage.NewFactory()
	backends, err := f.CreateAll(context.Background(), []storage.Config{
		{Name: "primary", Type: "local", Enabled: true, BaseDir: t.TempDir()},
		{Name: "disabled", Type: "local", Enabled: false},
	})
	require.NoError(t, err)
	require.Len(t, backends, 1)
	assert.Equal(t, "primary", backends[0].Name())
	assert.NoError(t, storage.CloseAll(backends))

	_, err = f.Create(context.Background(), storage.Config{Name: "x", Type: "ftp", Enabled: true})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}
