package journal

import (
	"strings"
	"time"
)

// Layouts accepted for date cells. Sheets round-trip through formatted
// text, so both ISO and US short forms show up.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"01-02-2006",
	"01-02-06",
	"2006/01/02",
	"Jan 2, 2006",
}

// dateOnly truncates a time to its calendar date in UTC so day arithmetic
// is DST-free.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate coerces a cell to a calendar date. It reports false for nil
// cells, non-date text and anything else unparseable.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return dateOnly(d), true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOnly(t), true
			}
		}
	}
	return time.Time{}, false
}

// pyWeekday numbers days Monday=0..Sunday=6, matching the week math the
// journal has always used (EOW lands on Sunday).
func pyWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// daysBetween returns whole calendar days from earlier to later.
func daysBetween(later, earlier time.Time) int {
	return int(dateOnly(later).Sub(dateOnly(earlier)).Hours() / 24)
}
