// Package clock parses, formats and compares the calendar values bookings are
// made of, in one configured location.
package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var ErrBadFormat = errors.New("unrecognised date or time format")

const (
	DateLayout            = "2006-01-02"
	InstallmentDateLayout = "02-01-2006"
	MonthLayout           = "2006-01"
	wallClockLayout       = "03:04 PM"
)

// Clock is safe for concurrent use.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// Load resolves an IANA zone name such as "Asia/Kolkata".
func Load(name string) (*Clock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return New(loc), nil
}

// WithNow returns a copy of c that reads the current time from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

func (c *Clock) Location() *time.Location { return c.loc }

func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

func (c *Clock) Today() time.Time { return c.Day(c.now()) }

// Day returns the calendar day containing t in the clock's location, as midnight UTC.
// Calendar days are compared and stored in that canonical form.
func (c *Clock) Day(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp.
func (c *Clock) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return c.Day(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrBadFormat, raw)
}

// ParseInstallmentDate accepts "DD-MM-YYYY" plus the forms ParseDate accepts.
func (c *Clock) ParseInstallmentDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if t, err := time.Parse(InstallmentDateLayout, trimmed); err == nil {
		return t, nil
	}
	if t, err := c.ParseDate(trimmed); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: installment date %q", ErrBadFormat, raw)
}

// ParseWallClock reads "h:mm AM", "hh:mmPM" or 24-hour "HH:MM" and returns minutes
// since midnight.
func (c *Clock) ParseWallClock(raw string) (int, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	var (
		t   time.Time
		err error
	)
	switch {
	case strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM"):
		t, err = time.Parse("3:04PM", s)
	default:
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrBadFormat, raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseMonth reads "YYYY-MM" and returns the first and last calendar day of that month.
func (c *Clock) ParseMonth(raw string) (first, last time.Time, err error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %q", ErrBadFormat, raw)
	}
	first, last = MonthBounds(t)
	return first, last, nil
}

// MonthBounds returns the first and last calendar day of t's month.
func MonthBounds(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

func FormatInstallmentDate(t time.Time) string { return t.Format(InstallmentDateLayout) }

// FormatWallClock renders minutes since midnight as "hh:mm AM"; values past
// midnight wrap to the next day's reading.
func FormatWallClock(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	t := time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC)
	return t.Format(wallClockLayout)
}

// TotalHours renders a duration as "H.MM": whole hours, then the leftover minutes as
// two digits. 90 minutes is "1.30", not "1.50".
func TotalHours(d time.Duration) string {
	mins := int(d / time.Minute)
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%d.%02d", mins/60, mins%60)
}
