package ledger

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"golang.org/x/text/cases"
)

// SchemaVersion identifies the physical column layout of a segment.
type SchemaVersion string

const (
	SchemaUnknown SchemaVersion = "UNKNOWN"
	SchemaOld     SchemaVersion = "OLD"
	SchemaNew     SchemaVersion = "NEW"
)

// Concrete reports whether v names an actual layout.
func (v SchemaVersion) Concrete() bool {
	return v == SchemaOld || v == SchemaNew
}

// ParseSchemaVersion parses "OLD" / "NEW"; anything else is SchemaUnknown.
func ParseSchemaVersion(s string) SchemaVersion {
	switch SchemaVersion(s) {
	case SchemaOld:
		return SchemaOld
	case SchemaNew:
		return SchemaNew
	default:
		return SchemaUnknown
	}
}

// Field is a logical attendance column.
type Field string

const (
	FieldDriverName  Field = "driverName"
	FieldDate        Field = "date"
	FieldDayOfWeek   Field = "dayOfWeek"
	FieldClockIn     Field = "clockIn"
	FieldClockOut    Field = "clockOut"
	FieldOTStart     Field = "otStart"
	FieldOTEnd       Field = "otEnd"
	FieldComments    Field = "comments"
	FieldSubmittedAt Field = "submittedAt"
	FieldOTHours     Field = "otHours"
	FieldApproval    Field = "approval"
)

// AllFields lists every logical field in NEW-layout order.
func AllFields() []Field {
	return []Field{
		FieldDriverName,
		FieldDate,
		FieldDayOfWeek,
		FieldClockIn,
		FieldClockOut,
		FieldOTStart,
		FieldOTEnd,
		FieldComments,
		FieldSubmittedAt,
		FieldOTHours,
		FieldApproval,
	}
}

// ParseField resolves a field name, returning ErrInvalidField for unknown names.
func ParseField(name string) (Field, error) {
	for _, f := range AllFields() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, name)
}

// ApprovalStatus is the value of the approval column. An empty cell means pending.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = ""
	ApprovalApproved ApprovalStatus = "Approve"
	ApprovalDenied   ApprovalStatus = "Deny"
	ApprovalAuto     ApprovalStatus = "AUTO"
)

func (s ApprovalStatus) IsPending() bool {
	return s == ApprovalPending
}

// Record is one attendance row, always in the 11-field NEW shape regardless of the
// layout it was read from.
type Record struct {
	RowIndex    int
	DriverName  string
	Date        string
	DayOfWeek   string
	ClockIn     string
	ClockOut    string
	OTStart     string
	OTEnd       string
	Comments    string
	SubmittedAt string
	OTHours     string
	Approval    ApprovalStatus
}

// Value returns the cell value of f.
func (r Record) Value(f Field) string {
	switch f {
	case FieldDriverName:
		return r.DriverName
	case FieldDate:
		return r.Date
	case FieldDayOfWeek:
		return r.DayOfWeek
	case FieldClockIn:
		return r.ClockIn
	case FieldClockOut:
		return r.ClockOut
	case FieldOTStart:
		return r.OTStart
	case FieldOTEnd:
		return r.OTEnd
	case FieldComments:
		return r.Comments
	case FieldSubmittedAt:
		return r.SubmittedAt
	case FieldOTHours:
		return r.OTHours
	case FieldApproval:
		return string(r.Approval)
	default:
		panic(fmt.Sprintf("%v: %q", ErrInvalidField, f))
	}
}

// Set assigns the cell value of f.
func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldDriverName:
		r.DriverName = v
	case FieldDate:
		r.Date = v
	case FieldDayOfWeek:
		r.DayOfWeek = v
	case FieldClockIn:
		r.ClockIn = v
	case FieldClockOut:
		r.ClockOut = v
	case FieldOTStart:
		r.OTStart = v
	case FieldOTEnd:
		r.OTEnd = v
	case FieldComments:
		r.Comments = v
	case FieldSubmittedAt:
		r.SubmittedAt = v
	case FieldOTHours:
		r.OTHours = v
	case FieldApproval:
		r.Approval = ApprovalStatus(v)
	default:
		panic(fmt.Sprintf("%v: %q", ErrInvalidField, f))
	}
}

// IsBlank reports whether the row carries no key at all.
func (r Record) IsBlank() bool {
	return r.DriverName == "" && r.Date == ""
}

// Changes is a partial record: only the fields present are written.
type Changes map[Field]string

// Has reports whether f is part of the change set.
func (c Changes) Has(f Field) bool {
	_, ok := c[f]
	return ok
}

// Apply merges the change set over r.
func (c Changes) Apply(r *Record) {
	for f, v := range c {
		r.Set(f, v)
	}
}

// Segment is a month partition of the ledger.
type Segment struct {
	Year  int
	Month time.Month
}

// SegmentFor returns the segment a date belongs to.
func SegmentFor(d localdate.Date) Segment {
	return Segment{Year: d.Year, Month: d.Month}
}

// Name is the sheet name, e.g. "March 2025 Attendance".
func (s Segment) Name() string {
	return fmt.Sprintf("%s %d Attendance", s.Month.String(), s.Year)
}

// Next returns the following month's segment.
func (s Segment) Next() Segment {
	t := time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Segment{Year: t.Year(), Month: t.Month()}
}

// Previous returns the preceding month's segment.
func (s Segment) Previous() Segment {
	t := time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Segment{Year: t.Year(), Month: t.Month()}
}

// SubmissionSegments lists the segments a record submitted at ts can live in. A record
// is stamped when it is written, so a late or backfilled entry carries a timestamp from
// a later month than its date. With year and month given only that segment is searched;
// otherwise the timestamp's month and the month before it, in that order.
func SubmissionSegments(ts time.Time, year, month int) []Segment {
	if year != 0 || month != 0 {
		return []Segment{{Year: localdate.NormalizeYear(year), Month: time.Month(month)}}
	}
	current := SegmentFor(localdate.FromTime(ts))
	return []Segment{current, current.Previous()}
}

func (s Segment) Valid() bool {
	return s.Year > 0 && s.Month >= time.January && s.Month <= time.December
}

// KeyKind selects how a record is located.
type KeyKind int

const (
	KeyDriverDate KeyKind = iota + 1
	KeySubmittedAt
	KeyRow
)

// Key identifies a record inside a segment.
type Key struct {
	Kind        KeyKind
	DriverName  string
	Date        string
	SubmittedAt string
	Row         int
}

func ByDriverDate(driverName, date string) Key {
	return Key{Kind: KeyDriverDate, DriverName: driverName, Date: date}
}

func BySubmittedAt(submittedAt string) Key {
	return Key{Kind: KeySubmittedAt, SubmittedAt: submittedAt}
}

func ByRow(row int) Key {
	return Key{Kind: KeyRow, Row: row}
}

func (k Key) String() string {
	switch k.Kind {
	case KeyDriverDate:
		return fmt.Sprintf("driver=%q date=%q", k.DriverName, k.Date)
	case KeySubmittedAt:
		return fmt.Sprintf("submitted_at=%q", k.SubmittedAt)
	case KeyRow:
		return fmt.Sprintf("row=%d", k.Row)
	default:
		return "invalid key"
	}
}

// AccessMode tells schema resolution whether the caller is about to write.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
)

// NameMatch is the driver-name comparison policy used by every lookup.
type NameMatch int

const (
	NameMatchExact NameMatch = iota
	NameMatchFold
)

// ParseNameMatch maps "fold"/"insensitive" to NameMatchFold and anything else to exact.
func ParseNameMatch(s string) NameMatch {
	switch s {
	case "fold", "insensitive", "case-insensitive":
		return NameMatchFold
	default:
		return NameMatchExact
	}
}

// Equal reports whether a and b name the same driver. Fold compares full Unicode case
// folds, so Equal(a, b) holds exactly when Canonical(a) == Canonical(b).
func (m NameMatch) Equal(a, b string) bool {
	if m == NameMatchFold {
		return m.Canonical(a) == m.Canonical(b)
	}
	return a == b
}

// Canonical folds a name the way Equal compares it, for use in lock keys.
func (m NameMatch) Canonical(name string) string {
	if m == NameMatchFold {
		// a Caser keeps state, so each call gets its own
		return cases.Fold().String(name)
	}
	return name
}

func (m NameMatch) String() string {
	if m == NameMatchFold {
		return "fold"
	}
	return "exact"
}

// LockKey identifies the (segment, driver, date) a write serializes on. Dates that
// denote the same day share a key; unparseable dates are used verbatim.
func LockKey(segment string, names NameMatch, driverName, date string) string {
	day := date
	if d, err := localdate.Parse(date); err == nil {
		day = d.ISO()
	}
	return segment + "|" + names.Canonical(driverName) + "|" + day
}
