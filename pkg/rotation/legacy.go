package rotation

import (
	"fmt"
	"time"
)

// SelectExpired is the age-based retention used when GFS is disabled.
// Backups created before now-maxAge are selected oldest first, subject to the
// same minKeep floor as SelectPrunable. A non-positive maxAge keeps everything.
func SelectExpired(backups []Backup, maxAge time.Duration, now time.Time, minKeep int) []Classification {
	if maxAge <= 0 {
		return []Classification{}
	}

	cutoff := now.Add(-maxAge)
	reason := fmt.Sprintf("older than %s", formatAge(maxAge))

	var expired []Classification
	for _, b := range backups {
		if b.CreatedAt.Before(cutoff) {
			expired = append(expired, Classification{Backup: b, Tier: TierPrunable, Reason: reason})
		}
	}

	return capOldestFirst(expired, len(backups), minKeep)
}

func formatAge(d time.Duration) string {
	day := 24 * time.Hour
	if d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}
