package localdate

import (
	"time"

	"golang.org/x/text/language"
)

// UnknownDay is stored when a day of week cannot be derived.
const UnknownDay = "Unknown"

var supportedLanguages = []language.Tag{
	language.English,
	language.Thai,
}

var dayNames = [][7]string{
	{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	{"อาทิตย์", "จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์"},
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// DayNamer translates weekdays into the ledger's display language.
type DayNamer struct {
	names [7]string
	tag   language.Tag
}

// NewDayNamer picks the closest supported translation for lang (a BCP 47 tag such as
// "en" or "th-TH"). Unparseable tags fall back to English.
func NewDayNamer(lang string) DayNamer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	_, idx, _ := languageMatcher.Match(tag)
	return DayNamer{names: dayNames[idx], tag: supportedLanguages[idx]}
}

func (n DayNamer) Language() language.Tag {
	return n.tag
}

func (n DayNamer) Name(wd time.Weekday) string {
	return n.names[wd]
}

// ForDate names the weekday of a date string, or returns UnknownDay when it does not parse.
func (n DayNamer) ForDate(date string) string {
	d, err := Parse(date)
	if err != nil {
		return UnknownDay
	}
	return n.Name(d.Weekday())
}

// ForDateOr names the weekday of date, falling back to the weekday of now when the
// date does not parse.
func (n DayNamer) ForDateOr(date string, now time.Time) string {
	d, err := Parse(date)
	if err != nil {
		return n.Name(FromTime(now).Weekday())
	}
	return n.Name(d.Weekday())
}
