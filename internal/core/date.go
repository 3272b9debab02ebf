package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date without a time-of-day component.
// Its canonical textual form is ISO "2006-01-02".
type Date struct {
	time.Time
}

const isoDate = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in ISO form (2006-01-02) or in the
// slash form used by the legacy forms (02/01/2006).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	if t, err := time.Parse(isoDate, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return Date{Time: t}, nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// CanonicalDate normalizes a date string to ISO form. The transform is
// idempotent: canonical input is returned unchanged.
func CanonicalDate(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDate)
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// YearMonth identifies a calendar month, canonical form "2006-01".
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a "2006-01" string.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return YearMonth{}, errors.New("empty year-month")
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q", s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the month containing d.
func YearMonthOf(d Date) YearMonth {
	return YearMonth{Year: d.Time.Year(), Month: d.Time.Month()}
}

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// IsZero reports whether the value is unset.
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// Before reports whether ym precedes other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	t := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOn returns the date for the given day of this month. Days past the
// end of the month are clamped to the last day (e.g. day 31 in February).
func (ym YearMonth) DateOn(day int) Date {
	if last := ym.Days(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(ym.Year, ym.Month, day)
}
