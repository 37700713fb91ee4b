package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackupFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantDB   string
		wantTier string
		want     time.Time
		wantErr  bool
	}{
		// Legacy format
		{
			name:     "legacy - simple database name",
			filename: "mydb_2024-12-17_03-00-00.backup",
			wantDB:   "mydb",
			want:     time.Date(2024, 12, 17, 3, 0, 0, 0, time.UTC),
		},
		{
			name:     "legacy - with full path",
			filename: "/backups/database_2024-01-01_00-00-00.backup",
			wantDB:   "database",
			want:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "legacy - database with underscores",
			filename: "my_prod_db_2024-12-17_14-30-45.backup",
			wantDB:   "my_prod_db",
			want:     time.Date(2024, 12, 17, 14, 30, 45, 0, time.UTC),
		},

		// Current format
		{
			name:     "simple database name",
			filename: "mydb--2024-12-17T03-00-00.backup",
			wantDB:   "mydb",
			want:     time.Date(2024, 12, 17, 3, 0, 0, 0, time.UTC),
		},
		{
			name:     "database with underscores",
			filename: "my_very_long_db_name--2024-12-17T14-30-45.backup",
			wantDB:   "my_very_long_db_name",
			want:     time.Date(2024, 12, 17, 14, 30, 45, 0, time.UTC),
		},
		{
			name:     "nested object path",
			filename: "prod/nightly/prod_db--2024-01-01T00-00-00.backup",
			wantDB:   "prod_db",
			want:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "database with dashes",
			filename: "my-prod-db--2024-12-17T14-30-45.backup",
			wantDB:   "my-prod-db",
			want:     time.Date(2024, 12, 17, 14, 30, 45, 0, time.UTC),
		},
		{
			name:     "tier tagged name",
			filename: "mydb--weekly--2024-12-16T03-00-00.backup",
			wantDB:   "mydb",
			wantTier: "weekly",
			want:     time.Date(2024, 12, 16, 3, 0, 0, 0, time.UTC),
		},

		// Invalid
		{
			name:     "no separator",
			filename: "database.backup",
			wantErr:  true,
		},
		{
			name:     "legacy - wrong date format",
			filename: "mydb_invalid-date.backup",
			wantErr:  true,
		},
		{
			name:     "legacy - incomplete date",
			filename: "mydb_2024-12.backup",
			wantErr:  true,
		},
		{
			name:     "invalid date",
			filename: "mydb--invalid-date.backup",
			wantErr:  true,
		},
		{
			name:     "empty database name",
			filename: "--2024-12-17T03-00-00.backup",
			wantErr:  true,
		},
		{
			name:     "too many parts",
			filename: "a--b--c--2024-12-17T03-00-00.backup",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackupFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDB, got.Database)
			assert.Equal(t, tt.wantTier, got.LegacyTier)
			assert.True(t, got.Timestamp.Equal(tt.want), "timestamp = %v, want %v", got.Timestamp, tt.want)
		})
	}
}

func TestGenerateBackupFilename(t *testing.T) {
	timestamp := time.Date(2024, 12, 17, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		backupDir string
		dbName    string
		want      string
	}{
		{
			name:      "simple database name",
			backupDir: "/backups",
			dbName:    "mydb",
			want:      "/backups/mydb--2024-12-17T14-30-45.backup",
		},
		{
			name:      "database with underscores",
			backupDir: "/backups",
			dbName:    "my_prod_db",
			want:      "/backups/my_prod_db--2024-12-17T14-30-45.backup",
		},
		{
			name:   "object name only",
			dbName: "my-prod-db",
			want:   "my-prod-db--2024-12-17T14-30-45.backup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateBackupFilename(tt.backupDir, tt.dbName, timestamp)
			assert.Equal(t, tt.want, got)

			parsed, err := ParseBackupFilename(got)
			require.NoError(t, err, "generated filename cannot be parsed")
			assert.Equal(t, tt.dbName, parsed.Database)
			assert.True(t, parsed.Timestamp.Equal(timestamp))
		})
	}
}

func TestGenerateBackupFilename_WritesUTC(t *testing.T) {
	cet := time.FixedZone("CET", 60*60)
	got := GenerateBackupFilename("", "db", time.Date(2024, 12, 17, 0, 30, 0, 0, cet))
	assert.Equal(t, "db--2024-12-16T23-30-00.backup", got)
}

func TestBelongsTo(t *testing.T) {
	name, err := ParseBackupFilename("db_test--2024-12-17T03-00-00.backup")
	require.NoError(t, err)

	assert.True(t, name.BelongsTo("db_test"))
	assert.False(t, name.BelongsTo("db"))
	assert.Equal(t, "db*.backup", BackupPattern("db"))
}
