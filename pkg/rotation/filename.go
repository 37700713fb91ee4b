package rotation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Date format constants
	DateFormat       = "2006-01-02T15-04-05" // current format, ISO-8601 like
	DateFormatLegacy = "2006-01-02_15-04-05" // underscore format of the first releases

	// Filename separators
	Separator       = "--"
	SeparatorLegacy = "_"

	// Extension of every backup object
	Extension = ".backup"
)

// BackupName holds the parsed components of a backup filename
type BackupName struct {
	Database  string
	Timestamp time.Time
	// LegacyTier is the tier tag of names written by the age-bucket rotation
	// (dbname--daily--ts.backup). It is informational only: tiers are
	// recomputed from timestamps on every run.
	LegacyTier string
}

// ParseBackupFilename parses a backup filename. Supported shapes:
//   - dbname--2024-12-17T15-04-05.backup
//   - dbname--TIER--2024-12-17T15-04-05.backup
//   - dbname_2024-12-17_15-04-05.backup
func ParseBackupFilename(filename string) (BackupName, error) {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if strings.Contains(stem, Separator) {
		return parseCurrent(stem)
	}
	return parseLegacy(stem)
}

func parseCurrent(stem string) (BackupName, error) {
	parts := strings.Split(stem, Separator)

	var name BackupName
	switch len(parts) {
	case 2:
		name.Database = parts[0]
	case 3:
		name.Database = parts[0]
		name.LegacyTier = parts[1]
	default:
		return BackupName{}, fmt.Errorf("invalid backup name %q: expected 2 or 3 parts separated by %s, got %d", stem, Separator, len(parts))
	}

	if name.Database == "" {
		return BackupName{}, fmt.Errorf("invalid backup name %q: empty database name", stem)
	}

	ts := parts[len(parts)-1]
	t, err := time.Parse(DateFormat, ts)
	if err != nil {
		return BackupName{}, fmt.Errorf("failed to parse timestamp '%s': %w", ts, err)
	}
	name.Timestamp = t

	return name, nil
}

// parseLegacy takes the last two underscore-separated parts as date and time,
// so database names containing underscores still parse.
func parseLegacy(stem string) (BackupName, error) {
	parts := strings.Split(stem, SeparatorLegacy)
	if len(parts) < 3 {
		return BackupName{}, fmt.Errorf("invalid legacy backup name %q: expected at least 3 parts separated by %s, got %d", stem, SeparatorLegacy, len(parts))
	}

	ts := parts[len(parts)-2] + SeparatorLegacy + parts[len(parts)-1]
	t, err := time.Parse(DateFormatLegacy, ts)
	if err != nil {
		return BackupName{}, fmt.Errorf("failed to parse legacy timestamp '%s': %w", ts, err)
	}

	return BackupName{
		Database:  strings.Join(parts[:len(parts)-2], SeparatorLegacy),
		Timestamp: t,
	}, nil
}

// GenerateBackupFilename returns dir/dbname--2006-01-02T15-04-05.backup.
// The timestamp is written in UTC.
func GenerateBackupFilename(dir, dbName string, timestamp time.Time) string {
	name := dbName + Separator + timestamp.UTC().Format(DateFormat) + Extension
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// BackupPattern is the glob matching every backup object of a database,
// in both the current and the legacy naming.
func BackupPattern(dbName string) string {
	return dbName + "*" + Extension
}

// BelongsTo reports whether a parsed name is a backup of dbName. The glob from
// BackupPattern also matches databases sharing a prefix (db vs db_test).
func (n BackupName) BelongsTo(dbName string) bool {
	return n.Database == dbName
}
