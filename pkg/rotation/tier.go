package rotation

import (
	"time"
)

// Tier is the retention classification of a single backup
type Tier string

const (
	TierDaily    Tier = "daily"
	TierWeekly   Tier = "weekly"
	TierMonthly  Tier = "monthly"
	TierPrunable Tier = "prunable"
)

// ReasonExceedsRetention is attached to every backup no tier claimed
const ReasonExceedsRetention = "exceeds retention"

// Priority orders tiers: monthly > weekly > daily > prunable
func (t Tier) Priority() int {
	switch t {
	case TierMonthly:
		return 3
	case TierWeekly:
		return 2
	case TierDaily:
		return 1
	default:
		return 0
	}
}

// Kept reports whether backups in this tier survive rotation
func (t Tier) Kept() bool {
	return t != TierPrunable
}

// Backup is a single backup snapshot as seen by the classifier
type Backup struct {
	ID        string
	CreatedAt time.Time
}

// Policy states how many periods of each granularity to retain.
// A zero count disables the tier.
type Policy struct {
	Daily   int
	Weekly  int
	Monthly int
}

// Total is the upper bound on the number of backups a policy can keep
func (p Policy) Total() int {
	return p.Daily + p.Weekly + p.Monthly
}

// Classification pairs a backup with its tier and a human-readable reason
type Classification struct {
	Backup
	Tier   Tier
	Reason string
}

// newerThan is the total order used for newest-first sorting.
// Identical instants fall back to ID ascending.
func newerThan(a, b Backup) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// olderThan is the total order used for oldest-first sorting and for picking
// the anchor of a period. Identical instants fall back to ID ascending.
func olderThan(a, b Backup) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
