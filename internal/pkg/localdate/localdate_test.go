package localdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"buddhist year", "05/03/2568", Date{2025, time.March, 5}, false},
		{"gregorian year", "05/03/2025", Date{2025, time.March, 5}, false},
		{"no padding", "5/3/2568", Date{2025, time.March, 5}, false},
		{"dash separator", "05-03-2025", Date{2025, time.March, 5}, false},
		{"iso", "2025-03-05", Date{2025, time.March, 5}, false},
		{"iso buddhist", "2568-03-05", Date{2025, time.March, 5}, false},
		{"surrounding spaces", "  05/03/2568 ", Date{2025, time.March, 5}, false},
		{"empty", "", Date{}, true},
		{"two parts", "05/03", Date{}, true},
		{"letters", "aa/03/2568", Date{}, true},
		{"impossible day", "31/02/2568", Date{}, true},
		{"month overflow", "01/13/2568", Date{}, true},
		{"two digit year", "05/03/25", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Format(t *testing.T) {
	d := Date{Year: 2025, Month: time.March, Day: 5}

	assert.Equal(t, "05/03/2568", d.Format(Buddhist))
	assert.Equal(t, "05/03/2025", d.Format(Gregorian))
	assert.Equal(t, "2025-03-05", d.ISO())
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestParseEpoch(t *testing.T) {
	assert.Equal(t, Gregorian, ParseEpoch("gregorian"))
	assert.Equal(t, Gregorian, ParseEpoch(" CE "))
	assert.Equal(t, Buddhist, ParseEpoch("buddhist"))
	assert.Equal(t, Buddhist, ParseEpoch("whatever"))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("05/03/2568", "05/03/2568"))
	assert.True(t, Same("05/03/2568", "5/3/2025"))
	assert.True(t, Same("2025-03-05", "05/03/2568"))
	assert.True(t, Same("not a date", "not a date"))
	assert.False(t, Same("05/03/2568", "06/03/2568"))
	assert.False(t, Same("not a date", "05/03/2568"))
}

func TestFromTime_UsesUTCPlus7(t *testing.T) {
	// 18:30 UTC is already the next day in Bangkok
	ts := time.Date(2025, time.March, 4, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, Date{2025, time.March, 5}, FromTime(ts))
	assert.Equal(t, "01:30", ClockOf(ts).String())
}

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := time.Date(2025, time.March, 5, 1, 15, 0, 0, time.UTC)

	s := Timestamp(ts)
	assert.Equal(t, "2025-03-05T08:15:00+07:00", s)

	parsed, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"17:40", 1060, false},
		{"7:05", 425, false},
		{"17:40:59", 1060, false},
		{"17.40", 1060, false},
		{"", 0, true},
		{"25:00", 0, true},
		{"late", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, got.Minutes())
		})
	}

	assert.Equal(t, "08:05", At(8, 5).String())
	assert.Panics(t, func() { MustTime("nope") })
}

func TestDayNamer(t *testing.T) {
	en := NewDayNamer("en")
	assert.Equal(t, language.English, en.Language())
	assert.Equal(t, "Wednesday", en.ForDate("05/03/2568"))
	assert.Equal(t, UnknownDay, en.ForDate("garbage"))

	th := NewDayNamer("th-TH")
	assert.Equal(t, language.Thai, th.Language())
	assert.Equal(t, "พุธ", th.ForDate("05/03/2568"))

	fallback := NewDayNamer("!!")
	assert.Equal(t, "Sunday", fallback.Name(time.Sunday))

	now := time.Date(2025, time.March, 5, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "Wednesday", en.ForDateOr("garbage", now))
}
