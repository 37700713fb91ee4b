package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectExpired(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	// ages 1 to 10 days
	var backups []Backup
	for age := 1; age <= 10; age++ {
		backups = append(backups, backupAt(now.AddDate(0, 0, -age)))
	}

	tests := []struct {
		name     string
		maxAge   time.Duration
		minKeep  int
		wantAges []int
	}{
		{
			name:     "expired backups oldest first",
			maxAge:   5 * 24 * time.Hour,
			wantAges: []int{10, 9, 8, 7, 6},
		},
		{
			name:     "floor limits deletions",
			maxAge:   5 * 24 * time.Hour,
			minKeep:  7,
			wantAges: []int{10, 9, 8},
		},
		{
			name:     "floor above total",
			maxAge:   24 * time.Hour,
			minKeep:  20,
			wantAges: []int{},
		},
		{
			name:     "disabled",
			maxAge:   0,
			wantAges: []int{},
		},
		{
			name:     "nothing old enough",
			maxAge:   30 * 24 * time.Hour,
			wantAges: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectExpired(backups, tt.maxAge, now, tt.minKeep)

			require.NotNil(t, got)
			require.Len(t, got, len(tt.wantAges))
			for i, age := range tt.wantAges {
				assert.Equal(t, now.AddDate(0, 0, -age), got[i].CreatedAt)
				assert.Equal(t, TierPrunable, got[i].Tier)
			}
		})
	}
}

func TestSelectExpired_Reason(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	backups := []Backup{backupAt(now.AddDate(0, 0, -8))}

	got := SelectExpired(backups, 5*24*time.Hour, now, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "older than 5d", got[0].Reason)

	got = SelectExpired(backups, 36*time.Hour, now, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "older than 36h0m0s", got[0].Reason)
}

func TestSelectExpired_CutoffIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	backups := []Backup{backupAt(now.AddDate(0, 0, -5))}

	got := SelectExpired(backups, 5*24*time.Hour, now, 0)

	assert.Empty(t, got)
}
