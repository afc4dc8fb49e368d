package validator

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidTimeOfDay accepts 24h HH:MM (seconds optional).
func IsValidTimeOfDay(s string) bool {
	_, err := localdate.ParseTime(s)
	return err == nil
}

// IsValidLedgerDate accepts day/month/year in either the Buddhist or Gregorian era.
func IsValidLedgerDate(s string) (localdate.Date, bool) {
	d, err := localdate.Parse(s)
	return d, err == nil
}

// IsValidMonth checks a 1-12 month number.
func IsValidMonth(m int) bool {
	return m >= int(time.January) && m <= int(time.December)
}

// IsValidYear accepts Gregorian years and Buddhist Era years.
func IsValidYear(y int) bool {
	return (y >= 2000 && y <= 2200) || (y >= 2000+localdate.BuddhistOffset && y <= 2200+localdate.BuddhistOffset)
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
