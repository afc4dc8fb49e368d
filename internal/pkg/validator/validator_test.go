package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	valid := []string{"08:00", "17:40", "7:05", "23:59:59"}
	invalid := []string{"", "24:00", "8am", "17:60"}
	for _, s := range valid {
		if !IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = true, want false", s)
		}
	}
}

func TestIsValidLedgerDate(t *testing.T) {
	valid := []string{"05/03/2568", "05/03/2025", "2025-03-05"}
	invalid := []string{"", "31/02/2568", "yesterday", "05/03"}
	for _, s := range valid {
		d, ok := IsValidLedgerDate(s)
		if !ok {
			t.Errorf("IsValidLedgerDate(%q) = false, want true", s)
			continue
		}
		if d.Year != 2025 || d.Day != 5 {
			t.Errorf("IsValidLedgerDate(%q) = %+v, want 2025-03-05", s, d)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidLedgerDate(s); ok {
			t.Errorf("IsValidLedgerDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonthAndYear(t *testing.T) {
	if !IsValidMonth(1) || !IsValidMonth(12) {
		t.Error("IsValidMonth should accept 1 and 12")
	}
	if IsValidMonth(0) || IsValidMonth(13) {
		t.Error("IsValidMonth should reject 0 and 13")
	}
	for _, y := range []int{2025, 2568} {
		if !IsValidYear(y) {
			t.Errorf("IsValidYear(%d) = false, want true", y)
		}
	}
	for _, y := range []int{0, 1999, 2300, 3000} {
		if IsValidYear(y) {
			t.Errorf("IsValidYear(%d) = true, want false", y)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"OLD", "NEW"}
	if !IsInSlice("NEW", slice) {
		t.Error("IsInSlice(NEW) = false, want true")
	}
	if IsInSlice("new", slice) {
		t.Error("IsInSlice(new) = true, want false")
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2025-03-05T08:15:00+07:00", "2025-03-05T01:15:00Z", "2025-03-05T01:15:00.123Z"}
	invalid := []string{"", "2025-03-05", "05/03/2568 08:15"}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "driver_name", Message: "driver_name is required"},
		{Field: "date", Message: "date is invalid"},
	}
	if got := errs.Error(); got != "driver_name: driver_name is required; date: date is invalid" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if len(m) != 2 || m["date"] != "date is invalid" {
		t.Errorf("ToMap() = %v", m)
	}
}
