// Package dates resolves calendar days in the game's reset timezone.
//
// Days are carried around as "YYYY-MM-DD" strings so they compare, sort and
// serialize the same way in cookies, JSON and Postgres date columns.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical day format.
const Layout = "2006-01-02"

// DefaultZone is the timezone whose midnight rolls the daily puzzle over.
const DefaultZone = "America/Los_Angeles"

// ErrInvalidDay is returned when a string is not a YYYY-MM-DD calendar day.
var ErrInvalidDay = errors.New("invalid day")

// Clock reports days in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClock creates a Clock for the named IANA zone.
func NewClock(zone string, opts ...Option) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", zone, err)
	}
	c := &Clock{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Location returns the clock's timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Today returns the current day in the clock's zone.
func (c *Clock) Today() string {
	return c.now().In(c.loc).Format(Layout)
}

// Yesterday returns the day before Today.
func (c *Clock) Yesterday() string {
	return AddDays(c.Today(), -1)
}

// EndOfDay returns the instant the current day rolls over.
func (c *Clock) EndOfDay() time.Time {
	now := c.now().In(c.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
}

// Parse validates a YYYY-MM-DD day string.
func Parse(day string) (time.Time, error) {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}

// Valid reports whether day is a well-formed calendar day.
func Valid(day string) bool {
	_, err := Parse(day)
	return err == nil
}

// AddDays shifts a day by n calendar days. Invalid input is returned unchanged.
func AddDays(day string, n int) string {
	t, err := Parse(day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// MonthRange returns the first and last day of a month.
func MonthRange(year int, month time.Month) (first, last string, err error) {
	if year < 1 || month < time.January || month > time.December {
		return "", "", fmt.Errorf("%w: %04d-%02d", ErrInvalidDay, year, month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start.Format(Layout), end.Format(Layout), nil
}
