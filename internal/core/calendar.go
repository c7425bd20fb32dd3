package core

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

type (
	// Date is a calendar day at midnight UTC.
	Date struct {
		time.Time
	}

	// Window is the half-open range [Start, End).
	Window struct {
		Start time.Time
		End   time.Time
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD literal.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q (use YYYY-MM-DD)", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidInput)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddMonths shifts the date by n calendar months, clamping to month end.
func (d Date) AddMonths(n int) Date {
	return Date{Time: AddMonthsClamped(d.Time, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as a YYYY-MM-DD literal.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts the literal form written by Value as well as the time values
// some drivers return for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		return errors.New("scan date: NULL value")
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*d = parsed
	return nil
}

// AddMonthsClamped adds n calendar months to t. When the target month is
// shorter than t's day-of-month, the result is the last day of that month
// (Jan 31 + 1 month = Feb 28 or 29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	day := t.Day()
	shifted := time.Date(t.Year(), t.Month()+time.Month(n), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if shifted.Day() != day {
		// overflowed into the following month; day 0 is the last day of the previous one
		shifted = time.Date(shifted.Year(), shifted.Month(), 0,
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return shifted
}

// MonthWindow returns the UTC window covering the calendar month "YYYY-MM".
func MonthWindow(month string) (Window, error) {
	m := monthPattern.FindStringSubmatch(month)
	if m == nil {
		return Window{}, fmt.Errorf("%w: invalid month %q (use YYYY-MM)", ErrInvalidInput, month)
	}
	year, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	if mon < 1 || mon > 12 {
		return Window{}, fmt.Errorf("%w: month out of range in %q", ErrInvalidInput, month)
	}

	start := time.Date(year, time.Month(mon), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// MonthKey formats the month bucket of t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// CurrentMonth returns the month key of now in UTC.
func CurrentMonth(now time.Time) string {
	return MonthKey(now.UTC())
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Month returns the key of the month the window starts in.
func (w Window) Month() string {
	return MonthKey(w.Start)
}

// Trailing widens the window backwards so it covers n whole months ending
// with the window's own month.
func (w Window) Trailing(n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{Start: AddMonthsClamped(w.Start, -(n - 1)), End: w.End}
}
