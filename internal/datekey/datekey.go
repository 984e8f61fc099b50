// Package datekey handles the clinic's textual date and time formats.
//
// Appointments carry a calendar date ("YYYY-MM-DD") and a local wall-clock
// time ("HH:MM") with no zone attached. Both are interpreted in the clinic
// location when an instant is needed.
package datekey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	MonthLayout = "2006-01"
)

var (
	ErrEmpty       = errors.New("datekey: empty value")
	ErrInvalidDate = errors.New("datekey: invalid date")
	ErrInvalidTime = errors.New("datekey: invalid time")
)

// Key formats a calendar date as YYYY-MM-DD with zero padding.
func Key(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// KeyOf returns the date key of t in its own location.
func KeyOf(t time.Time) string {
	return Key(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD key. Out-of-range days such as 2024-02-30
// are rejected.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, v, err)
	}
	return t, nil
}

// ParseClock parses HH:MM and returns the hour and minute.
func ParseClock(v string) (int, int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, 0, ErrEmpty
	}
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", ErrInvalidTime, v, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseMonth parses YYYY-MM.
func ParseMonth(v string) (int, time.Month, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, 0, ErrEmpty
	}
	t, err := time.Parse(MonthLayout, v)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", ErrInvalidDate, v, err)
	}
	return t.Year(), t.Month(), nil
}

// Instant combines a date key and a clock value into a moment in loc.
func Instant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc), nil
}

// DaysIn returns the number of days in the month, computed as day 0 of the
// following month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatBR renders a date key as DD/MM/YYYY. Unparseable input is returned unchanged.
func FormatBR(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.Format("02/01/2006")
}

// Location loads an IANA zone name, falling back to UTC.
func Location(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
