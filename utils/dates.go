package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateOnlyLayout = "2006-01-02"

// CalendarDate returns the civil date of t as seen in loc, expressed as
// midnight UTC so that date arithmetic never crosses a DST boundary.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween is the whole number of days from a to b. Both must come from
// CalendarDate. Computed on Unix seconds since time.Duration saturates at
// roughly 292 years.
func DaysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// ParseCalendarDate accepts "2006-01-02" or an RFC 3339 timestamp. A
// timestamp is reduced to its civil date in loc.
func ParseCalendarDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateOnlyLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return CalendarDate(t, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
