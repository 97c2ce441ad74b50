package date

import (
	"fmt"
	"time"
)

// MonthFormat is the format of a month identifier, e.g. "2024-03".
const MonthFormat = "2006-01"

// Month identifies a calendar month.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns the normalized month, so that NewMonth(2024, 13) is 2025-01.
func NewMonth(year int, month time.Month) Month {
	d := New(year, month, 1)
	return Month{d.y, d.m}
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month { return Month{d.y, d.m} }

// ParseMonth parses a "YYYY-MM" identifier.
func ParseMonth(str string) (Month, error) {
	t, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return Month{t.Year(), t.Month()}, nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Year returns the year of the month.
func (m Month) Year() int { return m.y }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.m }

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m == Month{} }

// String returns the "YYYY-MM" identifier.
func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.y, int(m.m)) }

// Start returns the first day of the month.
func (m Month) Start() Date { return New(m.y, m.m, 1) }

// Next returns the following month.
func (m Month) Next() Month { return NewMonth(m.y, m.m+1) }

// Before reports whether m is before x.
func (m Month) Before(x Month) bool { return m.Start().Before(x.Start()) }

// Bounds returns the inclusive lexicographic bounds of the month as ISO
// strings. The upper bound is always day "31", whatever the month length: no
// valid date of a shorter month can sort above it, and no date of the next
// month can sort below it.
func (m Month) Bounds() (start, end string) {
	id := m.String()
	return id + "-01", id + "-31"
}

// Contains reports whether d falls in the month, using the lexicographic bounds.
func (m Month) Contains(d Date) bool {
	start, end := m.Bounds()
	s := d.String()
	return s >= start && s <= end
}

// MarshalText writes the month as a JSON string, map keys included.
func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Month) UnmarshalText(text []byte) error {
	v, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
