package localdate

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time on a synthetic fixed day, stored as minutes past midnight.
type TimeOfDay int

var timeLayouts = []string{"15:04", "15:04:05", "15.04"}

// ParseTime accepts HH:MM (24h), optionally with seconds.
func ParseTime(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// MustTime is ParseTime for package-level constants.
func MustTime(s string) TimeOfDay {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// At builds a TimeOfDay from an hour and minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ClockOf returns the wall-clock time of t in UTC+7.
func ClockOf(t time.Time) TimeOfDay {
	local := t.In(Bangkok)
	return At(local.Hour(), local.Minute())
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}
