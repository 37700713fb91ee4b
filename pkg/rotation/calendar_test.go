package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekKey(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name     string
		instant  time.Time
		wantYear int
		wantWeek int
	}{
		{
			name:     "monday starting week 1 of next year",
			instant:  time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
			wantYear: 2026,
			wantWeek: 1,
		},
		{
			name:     "sunday closing the last week of the year",
			instant:  time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC),
			wantYear: 2025,
			wantWeek: 52,
		},
		{
			name:     "friday belonging to previous year's week 53",
			instant:  time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			wantYear: 2020,
			wantWeek: 53,
		},
		{
			name:     "sunday ending week 1",
			instant:  time.Date(2026, 1, 4, 23, 59, 59, 0, time.UTC),
			wantYear: 2026,
			wantWeek: 1,
		},
		{
			name:     "mid year",
			instant:  time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC),
			wantYear: 2025,
			wantWeek: 25,
		},
		{
			name:     "non-UTC instant is evaluated in UTC",
			instant:  time.Date(2025, 12, 28, 22, 0, 0, 0, est),
			wantYear: 2026,
			wantWeek: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, week := ISOWeekKey(tt.instant)
			assert.Equal(t, tt.wantYear, year, "year")
			assert.Equal(t, tt.wantWeek, week, "week")
		})
	}
}

// thursdayWeek shifts the date to the Thursday of its week and counts weeks
// from January 1 of that Thursday's year.
func thursdayWeek(t time.Time) (int, int) {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	thursday := day.AddDate(0, 0, 4-weekday)
	jan1 := time.Date(thursday.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(jan1).Hours() / 24)

	return thursday.Year(), days/7 + 1
}

func TestISOWeekKey_MatchesThursdayRule(t *testing.T) {
	day := time.Date(1999, 12, 1, 6, 0, 0, 0, time.UTC)
	end := time.Date(2031, 1, 31, 0, 0, 0, 0, time.UTC)

	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		wantYear, wantWeek := thursdayWeek(day)
		year, week := ISOWeekKey(day)
		if year != wantYear || week != wantWeek {
			t.Fatalf("ISOWeekKey(%s) = (%d, %d), want (%d, %d)", day.Format(time.DateOnly), year, week, wantYear, wantWeek)
		}
		assert.True(t, week >= 1 && week <= 53)
	}
}

func TestWeekKeyString(t *testing.T) {
	assert.Equal(t, "2026-W01", WeekKeyString(2026, 1))
	assert.Equal(t, "2025-W52", WeekKeyString(2025, 52))
}

func TestMonthKey(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name    string
		instant time.Time
		want    string
	}{
		{
			name:    "january is zero padded",
			instant: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			want:    "2025-01",
		},
		{
			name:    "last second of the year",
			instant: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			want:    "2025-12",
		},
		{
			name:    "non-UTC instant rolls into the next UTC month",
			instant: time.Date(2025, 12, 31, 20, 0, 0, 0, est),
			want:    "2026-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthKey(tt.instant))
		})
	}
}

func TestPeriodOrdinalsFollowTime(t *testing.T) {
	// ordinals must order the same way as time across year boundaries
	earlier := weekPeriod(time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC))
	later := weekPeriod(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier.ordinal, later.ordinal)
	assert.Equal(t, "2025-W52", earlier.label)
	assert.Equal(t, "2026-W01", later.label)

	dec := monthPeriod(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	jan := monthPeriod(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, dec.ordinal, jan.ordinal)
	assert.Equal(t, "2025-12", dec.label)
}
