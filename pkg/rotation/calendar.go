package rotation

import (
	"fmt"
	"time"
)

// ISOWeekKey returns the ISO-8601 week-numbering year and week (1-53) of t in UTC.
// Weeks start on Monday and week 1 is the week holding the year's first Thursday,
// so Dec 29, 2025 is week 1 of 2026 and Jan 1, 2021 is week 53 of 2020.
func ISOWeekKey(t time.Time) (year, week int) {
	return t.UTC().ISOWeek()
}

// WeekKeyString formats an ISO week as YYYY-Www
func WeekKeyString(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns YYYY-MM for the UTC year and month of t
func MonthKey(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d-%02d", u.Year(), int(u.Month()))
}

// period identifies one calendar bucket. ordinal grows with time so buckets
// compare as (year, index) tuples without going through the label.
type period struct {
	ordinal int
	label   string
}

type periodFunc func(time.Time) period

func weekPeriod(t time.Time) period {
	year, week := ISOWeekKey(t)
	return period{ordinal: year*100 + week, label: WeekKeyString(year, week)}
}

func monthPeriod(t time.Time) period {
	u := t.UTC()
	return period{ordinal: u.Year()*100 + int(u.Month()), label: MonthKey(u)}
}
