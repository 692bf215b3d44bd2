// Package phtime implements calendar boundary arithmetic in the fixed
// UTC+8 offset used for all business dates, independent of the host
// timezone.
package phtime

import (
	"errors"
	"time"
)

// Location is the fixed UTC+8 offset. Business days, weeks, months and
// years are all resolved against this offset, never the host zone.
var Location = time.FixedZone("PHT", 8*3600)

// ErrBadDate is returned for date literals that are not YYYY-MM-DD.
var ErrBadDate = errors.New("phtime: date must be YYYY-MM-DD")

// Clock supplies the current instant. Injected so "today" is explicit
// and testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC instant.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// StartOfDay returns the UTC instant of local midnight for t's calendar day.
func StartOfDay(t time.Time) time.Time {
	lt := t.In(Location)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, Location).UTC()
}

// EndOfDay returns the last millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}

// StartOfWeek returns local Monday 00:00:00 of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := (int(day.In(Location).Weekday()) + 6) % 7
	return day.Add(-time.Duration(weekday) * 24 * time.Hour)
}

// EndOfWeek is exactly StartOfWeek + 7 days - 1ms.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).Add(7*24*time.Hour - time.Millisecond)
}

// StartOfMonth returns local midnight on the 1st of t's month.
func StartOfMonth(t time.Time) time.Time {
	lt := t.In(Location)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, Location).UTC()
}

// EndOfMonth returns the last millisecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	lt := t.In(Location)
	next := time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, Location).AddDate(0, 1, 0)
	return next.UTC().Add(-time.Millisecond)
}

// StartOfYear returns local midnight on January 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	lt := t.In(Location)
	return time.Date(lt.Year(), 1, 1, 0, 0, 0, 0, Location).UTC()
}

// EndOfYear returns the last millisecond of t's year.
func EndOfYear(t time.Time) time.Time {
	lt := t.In(Location)
	next := time.Date(lt.Year()+1, 1, 1, 0, 0, 0, 0, Location)
	return next.UTC().Add(-time.Millisecond)
}

// StartOfDateString resolves a YYYY-MM-DD literal to local midnight
// without going through host-timezone date inference.
func StartOfDateString(date string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date, Location)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t.UTC(), nil
}

// EndOfDateString resolves a YYYY-MM-DD literal to the day's last millisecond.
func EndOfDateString(date string) (time.Time, error) {
	start, err := StartOfDateString(date)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(24*time.Hour - time.Millisecond), nil
}

// ParseDate parses a calendar date (no time component) in the fixed offset.
func ParseDate(date string) (time.Time, error) {
	return StartOfDateString(date)
}

// FormatDate renders t's calendar date in the fixed offset.
func FormatDate(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}

// FormatDateTime renders t as a PH-localized date/time string.
func FormatDateTime(t time.Time) string {
	return t.In(Location).Format("01/02/2006, 3:04 PM")
}
