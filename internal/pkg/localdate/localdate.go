package localdate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuddhistOffset is the difference between a Buddhist Era year and the Gregorian year.
const BuddhistOffset = 543

// buddhistThreshold separates Buddhist Era years from Gregorian ones. No Gregorian
// year the ledger deals with comes anywhere near it.
const buddhistThreshold = 2400

// Bangkok is the fixed UTC+7 zone every submission timestamp is written in.
var Bangkok = time.FixedZone("UTC+7", 7*60*60)

var (
	ErrInvalidDate = errors.New("invalid date format, expected day/month/year")
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")
)

// Epoch selects how years are rendered when a date is formatted.
type Epoch int

const (
	Buddhist Epoch = iota
	Gregorian
)

// ParseEpoch maps a configuration value onto an Epoch. Anything unrecognised is Buddhist.
func ParseEpoch(s string) Epoch {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gregorian", "ce", "ad":
		return Gregorian
	default:
		return Buddhist
	}
}

// Date is a calendar date normalized to the Gregorian year.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse accepts D/M/YYYY (also with '-' or '.' separators) and ISO YYYY-MM-DD.
// Years in the Buddhist Era are converted to Gregorian.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}

	var day, month, year int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
	}

	year = NormalizeYear(year)
	if year < 1000 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, Bangkok)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// NormalizeYear converts a Buddhist Era year to Gregorian and leaves Gregorian years alone.
func NormalizeYear(year int) int {
	if year >= buddhistThreshold {
		return year - BuddhistOffset
	}
	return year
}

// FromTime returns the calendar date of t as observed in UTC+7.
func FromTime(t time.Time) Date {
	local := t.In(Bangkok)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of the date in UTC+7.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Bangkok)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Format renders DD/MM/YYYY with the year in the requested epoch.
func (d Date) Format(e Epoch) string {
	year := d.Year
	if e == Buddhist {
		year += BuddhistOffset
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), year)
}

// ISO renders YYYY-MM-DD in the Gregorian calendar.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Same reports whether two date strings denote the same calendar day. Strings that
// are byte-identical always match, even when they do not parse.
func Same(a, b string) bool {
	if a == b {
		return true
	}
	da, err := Parse(a)
	if err != nil {
		return false
	}
	db, err := Parse(b)
	if err != nil {
		return false
	}
	return da == db
}

// Timestamp formats t as an RFC3339 string with an explicit +07:00 offset.
func Timestamp(t time.Time) string {
	return t.In(Bangkok).Format(time.RFC3339)
}

// ParseTimestamp parses a submission timestamp written by Timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.In(Bangkok), nil
}
