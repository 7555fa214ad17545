// Package dates holds the calendar helpers used by personnel documents:
// ISO storage format, DD.MM.YYYY display format, Ukrainian month names.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout is the storage and API format.
	ISOLayout = "2006-01-02"
	// DisplayLayout is the format printed on documents.
	DisplayLayout = "02.01.2006"
)

var genitiveMonths = [12]string{
	"січня", "лютого", "березня", "квітня", "травня", "червня",
	"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
}

// ParseISO parses YYYY-MM-DD. DD.MM.YYYY is accepted as well.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DisplayLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// FormatISO formats t as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// FormatDisplay formats t as DD.MM.YYYY.
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

// DisplayFromISO converts a stored date to display form. Unparseable input is returned as is.
func DisplayFromISO(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseISO(s)
	if err != nil {
		return s
	}
	return FormatDisplay(t)
}

// GenitiveMonth returns the Ukrainian month name in genitive case ("січня").
func GenitiveMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return genitiveMonths[m-1]
}

// FormatLong formats t as «DD» місяця YYYY р.
func FormatLong(t time.Time) string {
	return fmt.Sprintf("«%02d» %s %d р.", t.Day(), GenitiveMonth(t.Month()), t.Year())
}

// Today truncates now to a calendar date in UTC.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months. A day that does not exist in the target
// month is clamped to its last day (Jan 31 + 1 month = Feb 28 or Feb 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysInclusive returns the number of days in [start, end], both ends counted.
func DaysInclusive(start, end time.Time) int {
	return int(Today(end).Sub(Today(start)).Hours()/24) + 1
}

// Anniversary returns the month/day of d in the given year. Feb 29 maps to
// Feb 28 when year is not a leap year.
func Anniversary(d time.Time, year int) time.Time {
	month, day := d.Month(), d.Day()
	if month == time.February && day == 29 && !IsLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsLeap reports whether year is a leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return !start.After(end)
}
