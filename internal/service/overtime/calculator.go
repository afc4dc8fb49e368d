package overtime

import (
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/shopspring/decimal"
)

// Reason explains why a result carries no overtime.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonBlackout            Reason = "blackout"
	ReasonWithinStandardHours Reason = "within standard hours"
)

const (
	// BlackoutDay is the first day of the month on which overtime is not paid.
	BlackoutDay = 25

	hourPlaces = 2
)

var (
	// MorningBoundary is the start of the standard working day.
	MorningBoundary = localdate.At(8, 0)
	// EveningBoundary is the end of the standard working day.
	EveningBoundary = localdate.At(17, 0)

	minutesPerHour = decimal.NewFromInt(60)
)

// Result is the overtime attributable to one shift. Start and End are HH:MM and
// empty when Disabled. Total is not always Morning + Evening, since each is rounded
// from minutes on its own.
type Result struct {
	Morning  decimal.Decimal
	Evening  decimal.Decimal
	Total    decimal.Decimal
	Start    string
	End      string
	Disabled bool
	Reason   Reason
}

// Hours renders the total with two decimals, the way it is stored in the ledger.
func (r Result) Hours() string {
	return r.Total.StringFixed(hourPlaces)
}

// Message is a human readable summary of the result.
func (r Result) Message() string {
	switch r.Reason {
	case ReasonBlackout:
		return "Overtime is not calculated from the 25th of the month onwards"
	case ReasonWithinStandardHours:
		return "Shift is within standard hours, no overtime"
	default:
		return "Overtime " + r.Hours() + " hours (" + r.Start + " - " + r.End + ")"
	}
}

// Calculator derives overtime from clock times against fixed day boundaries.
type Calculator struct{}

func NewCalculator() Calculator {
	return Calculator{}
}

// Compute returns the overtime of a shift on date. Times that are missing or do not
// parse contribute nothing. Times never wrap past midnight, so a clock-out that is
// numerically before the clock-in simply yields no evening overtime.
func (c Calculator) Compute(clockIn, clockOut string, date localdate.Date) Result {
	if date.Day >= BlackoutDay {
		return disabled(ReasonBlackout)
	}

	var morningMinutes, eveningMinutes int
	if in, err := localdate.ParseTime(clockIn); err == nil && in < MorningBoundary {
		morningMinutes = MorningBoundary.Minutes() - in.Minutes()
	}
	if out, err := localdate.ParseTime(clockOut); err == nil && out > EveningBoundary {
		eveningMinutes = out.Minutes() - EveningBoundary.Minutes()
	}

	// The total is rounded once from the summed minutes; the components are rounded
	// for display only.
	result := Result{
		Morning: hours(morningMinutes),
		Evening: hours(eveningMinutes),
		Total:   hours(morningMinutes + eveningMinutes),
	}

	switch {
	case morningMinutes > 0 && eveningMinutes > 0:
		result.Start, result.End = clockIn, clockOut
	case morningMinutes > 0:
		result.Start, result.End = clockIn, MorningBoundary.String()
	case eveningMinutes > 0:
		result.Start, result.End = EveningBoundary.String(), clockOut
	default:
		return disabled(ReasonWithinStandardHours)
	}

	return result
}

func hours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(hourPlaces)
}

func disabled(reason Reason) Result {
	return Result{
		Morning:  decimal.Zero,
		Evening:  decimal.Zero,
		Total:    decimal.Zero,
		Disabled: true,
		Reason:   reason,
	}
}
