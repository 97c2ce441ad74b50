// Package date provides day-precision dates and calendar months as used by
// the ledger: transactions are dated to the day and planning happens per month.
package date

import (
	"fmt"
	"time"
)

// Layout is the ISO form dates are written in. Month bounds compare dates
// in this form as strings.
const Layout = "2006-01-02"

// lenientLayout also reads single digit months and days, e.g. "2024-3-5".
const lenientLayout = "2006-1-2"

// Date is a calendar day. Its zero value means "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the normalized Date, so that New(2024, 1, 32) is 2024-02-01.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// On returns the day of t in t's own location.
func On(t time.Time) Date { return New(t.Date()) }

// Today returns the current day in the local time zone.
func Today() Date { return On(time.Now()) }

// time is midnight UTC of the day, so equal days give equal times.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Add returns the day i days after d, or before when i is negative.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String returns the day in the Layout form.
func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.y, int(d.m), d.d) }

// Parse reads a day in the Layout form, tolerating single digit months and days.
func Parse(str string) (Date, error) {
	t, err := time.Parse(lenientLayout, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Layout, err)
	}
	return On(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalText writes the day as a JSON string.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
