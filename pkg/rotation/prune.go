package rotation

import (
	"sort"
)

// SelectPrunable returns the prunable backups that may actually be deleted.
//
// At most len(backups)-minKeep backups are returned, oldest first, so when the
// floor forces some prunable backups to stay, the newest of them survive.
// Tiered backups count toward the floor but are never selected. The floor only
// declines deletions: it never changes a tier.
func SelectPrunable(backups []Backup, policy Policy, minKeep int) []Classification {
	var prunable []Classification
	for _, c := range Classify(backups, policy) {
		if c.Tier == TierPrunable {
			prunable = append(prunable, c)
		}
	}

	return capOldestFirst(prunable, len(backups), minKeep)
}

// capOldestFirst orders candidates oldest first and trims them so that at least
// minKeep of total backups survive.
func capOldestFirst(candidates []Classification, total, minKeep int) []Classification {
	allowance := total - minKeep
	if allowance <= 0 || len(candidates) == 0 {
		return []Classification{}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return olderThan(candidates[i].Backup, candidates[j].Backup)
	})

	if len(candidates) > allowance {
		candidates = candidates[:allowance]
	}

	return candidates
}
