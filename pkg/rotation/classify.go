package rotation

import (
	"fmt"
	"sort"
)

// Classify partitions backups into GFS tiers.
//
// Backups are sorted newest first, then claimed by four passes in priority
// order: the newest policy.Daily backups become daily; of the rest, the oldest
// backup of each of the policy.Weekly most recent ISO weeks becomes weekly; of
// what remains, the oldest backup of each of the policy.Monthly most recent
// months becomes monthly; everything else is prunable. Each pass only sees what
// the previous ones left, so a backup is never counted twice.
//
// The result holds exactly one entry per input backup, in newest-first order,
// and does not depend on the order of the input.
func Classify(backups []Backup, policy Policy) []Classification {
	if len(backups) == 0 {
		return []Classification{}
	}

	pending := sortedNewestFirst(backups)
	result := make([]Classification, 0, len(pending))

	daily, pending := claimNewest(pending, policy.Daily)
	weekly, pending := claimPeriods(pending, policy.Weekly, TierWeekly, "week", weekPeriod)
	monthly, pending := claimPeriods(pending, policy.Monthly, TierMonthly, "month", monthPeriod)

	result = append(result, daily...)
	result = append(result, weekly...)
	result = append(result, monthly...)
	for _, b := range pending {
		result = append(result, Classification{Backup: b, Tier: TierPrunable, Reason: ReasonExceedsRetention})
	}

	sort.Slice(result, func(i, j int) bool {
		return newerThan(result[i].Backup, result[j].Backup)
	})

	return result
}

// CountByTier tallies classifications per tier
func CountByTier(classified []Classification) map[Tier]int {
	counts := map[Tier]int{
		TierDaily:    0,
		TierWeekly:   0,
		TierMonthly:  0,
		TierPrunable: 0,
	}
	for _, c := range classified {
		counts[c.Tier]++
	}
	return counts
}

func sortedNewestFirst(backups []Backup) []Backup {
	sorted := make([]Backup, len(backups))
	copy(sorted, backups)
	sort.Slice(sorted, func(i, j int) bool {
		return newerThan(sorted[i], sorted[j])
	})
	return sorted
}

// claimNewest takes the first n backups of a newest-first slice
func claimNewest(pending []Backup, n int) ([]Classification, []Backup) {
	if n <= 0 {
		return nil, pending
	}

	reason := fmt.Sprintf("newest %d", n)
	if n > len(pending) {
		n = len(pending)
	}

	claimed := make([]Classification, 0, n)
	for _, b := range pending[:n] {
		claimed = append(claimed, Classification{Backup: b, Tier: TierDaily, Reason: reason})
	}

	return claimed, pending[n:]
}

// claimPeriods groups pending backups by period, picks the oldest backup of
// each period as its candidate and claims the candidates of the limit most
// recent periods. The remainder keeps the newest-first order of pending.
func claimPeriods(pending []Backup, limit int, tier Tier, label string, periodOf periodFunc) ([]Classification, []Backup) {
	if limit <= 0 || len(pending) == 0 {
		return nil, pending
	}

	type candidate struct {
		period period
		backup Backup
	}

	byOrdinal := make(map[int]*candidate)
	for _, b := range pending {
		p := periodOf(b.CreatedAt)
		c, ok := byOrdinal[p.ordinal]
		if !ok {
			byOrdinal[p.ordinal] = &candidate{period: p, backup: b}
			continue
		}
		if olderThan(b, c.backup) {
			c.backup = b
		}
	}

	candidates := make([]*candidate, 0, len(byOrdinal))
	for _, c := range byOrdinal {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].period.ordinal > candidates[j].period.ordinal
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	claimed := make([]Classification, 0, len(candidates))
	claimedIDs := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		claimed = append(claimed, Classification{
			Backup: c.backup,
			Tier:   tier,
			Reason: label + " " + c.period.label,
		})
		claimedIDs[c.backup.ID] = struct{}{}
	}

	rest := make([]Backup, 0, len(pending)-len(claimed))
	for _, b := range pending {
		if _, ok := claimedIDs[b.ID]; ok {
			continue
		}
		rest = append(rest, b)
	}

	return claimed, rest
}
