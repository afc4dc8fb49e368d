package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
)

// ========================================
// CLOCK EVENT DTOs
// ========================================

type ClockEventRequest struct {
	DriverName   string  `json:"driver_name"`
	Date         string  `json:"date"` // DD/MM/YYYY, Buddhist or Gregorian year
	Time         string  `json:"time"` // HH:MM
	Comments     *string `json:"comments,omitempty"`
	SkipOvertime bool    `json:"skip_overtime"`
}

func (r *ClockEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DriverName) {
		errs = append(errs, validator.ValidationError{
			Field:   "driver_name",
			Message: "driver_name is required",
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	}

	if validator.IsEmpty(r.Time) {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time is required",
		})
	} else if !validator.IsValidTimeOfDay(r.Time) {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// UPSERT DTOs
// ========================================

// UpsertRequest writes a partial record. Fields are keyed by logical field name
// (clockIn, clockOut, otStart, otEnd, comments, submittedAt, otHours, approval).
type UpsertRequest struct {
	DriverName       string            `json:"driver_name"`
	Date             string            `json:"date"`
	Fields           map[string]string `json:"fields"`
	SuppressOvertime bool              `json:"suppress_overtime"`
}

// writableFields are the fields a caller may set directly. The key columns and the
// derived day of week are managed by the ledger.
var writableFields = []string{
	string(FieldClockIn),
	string(FieldClockOut),
	string(FieldOTStart),
	string(FieldOTEnd),
	string(FieldComments),
	string(FieldSubmittedAt),
	string(FieldOTHours),
	string(FieldApproval),
}

func (r *UpsertRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DriverName) {
		errs = append(errs, validator.ValidationError{
			Field:   "driver_name",
			Message: "driver_name is required",
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	}

	if len(r.Fields) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "fields",
			Message: "at least one field is required",
		})
	}

	for name, value := range r.Fields {
		if !validator.IsInSlice(name, writableFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "fields." + name,
				Message: "field must be one of: " + strings.Join(writableFields, ", "),
			})
			continue
		}

		switch Field(name) {
		case FieldClockIn, FieldClockOut, FieldOTStart, FieldOTEnd:
			if value != "" && !validator.IsValidTimeOfDay(value) {
				errs = append(errs, validator.ValidationError{
					Field:   "fields." + name,
					Message: name + " must be in HH:MM format",
				})
			}
		case FieldApproval:
			valid := []string{string(ApprovalPending), string(ApprovalApproved), string(ApprovalDenied), string(ApprovalAuto)}
			if !validator.IsInSlice(value, valid) {
				errs = append(errs, validator.ValidationError{
					Field:   "fields." + name,
					Message: "approval must be empty or one of: Approve, Deny, AUTO",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Changes converts the request fields into a change set. Validate must pass first.
func (r *UpsertRequest) Changes() Changes {
	changes := make(Changes, len(r.Fields))
	for name, value := range r.Fields {
		changes[Field(name)] = value
	}
	return changes
}

type UpsertResponse struct {
	Created  bool              `json:"created"`
	RowIndex int               `json:"row_index"`
	Segment  string            `json:"segment"`
	Schema   string            `json:"schema"`
	Record   RecordResponse    `json:"record"`
	Overtime *OvertimeResponse `json:"overtime,omitempty"`
}

// ========================================
// RECORD DTOs
// ========================================

type RecordResponse struct {
	Row         int    `json:"row"`
	DriverName  string `json:"driver_name"`
	Date        string `json:"date"`
	DayOfWeek   string `json:"day_of_week"`
	ClockIn     string `json:"clock_in"`
	ClockOut    string `json:"clock_out"`
	OTStart     string `json:"ot_start"`
	OTEnd       string `json:"ot_end"`
	Comments    string `json:"comments"`
	SubmittedAt string `json:"submitted_at"`
	OTHours     string `json:"ot_hours"`
	Approval    string `json:"approval"`
}

// NewRecordResponse maps a Record onto its response shape.
func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		Row:         r.RowIndex,
		DriverName:  r.DriverName,
		Date:        r.Date,
		DayOfWeek:   r.DayOfWeek,
		ClockIn:     r.ClockIn,
		ClockOut:    r.ClockOut,
		OTStart:     r.OTStart,
		OTEnd:       r.OTEnd,
		Comments:    r.Comments,
		SubmittedAt: r.SubmittedAt,
		OTHours:     r.OTHours,
		Approval:    string(r.Approval),
	}
}

type ListRecordsRequest struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	DriverName  *string `json:"driver_name,omitempty"`
	PendingOnly bool    `json:"pending_only"`
}

func (r *ListRecordsRequest) Validate() error {
	return validateSegment(r.Year, r.Month)
}

func (r *ListRecordsRequest) Segment() Segment {
	return Segment{Year: localdate.NormalizeYear(r.Year), Month: time.Month(r.Month)}
}

type ListRecordsResponse struct {
	Segment    string           `json:"segment"`
	Schema     string           `json:"schema"`
	TotalCount int              `json:"total_count"`
	Records    []RecordResponse `json:"records"`
}

type LatestRecordRequest struct {
	DriverName string `json:"driver_name"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *LatestRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DriverName) {
		errs = append(errs, validator.ValidationError{
			Field:   "driver_name",
			Message: "driver_name is required",
		})
	}
	if err := validateSegment(r.Year, r.Month); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *LatestRecordRequest) Segment() Segment {
	return Segment{Year: localdate.NormalizeYear(r.Year), Month: time.Month(r.Month)}
}

// ========================================
// OVERTIME DTOs
// ========================================

type OvertimePreviewRequest struct {
	ClockIn  string `json:"clock_in"`
	ClockOut string `json:"clock_out"`
	Date     string `json:"date"`
}

func (r *OvertimePreviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ClockIn != "" && !validator.IsValidTimeOfDay(r.ClockIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in",
			Message: "clock_in must be in HH:MM format",
		})
	}

	if validator.IsEmpty(r.ClockOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out",
			Message: "clock_out is required",
		})
	} else if !validator.IsValidTimeOfDay(r.ClockOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out",
			Message: "clock_out must be in HH:MM format",
		})
	}

	if _, ok := validator.IsValidLedgerDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in DD/MM/YYYY format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OvertimeResponse struct {
	MorningHours string `json:"morning_hours"`
	EveningHours string `json:"evening_hours"`
	TotalHours   string `json:"total_hours"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Disabled     bool   `json:"disabled"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
}

// SubmittedAtRequest looks a record up by its exact submission timestamp. Year and
// month are optional and name the segment to search.
type SubmittedAtRequest struct {
	SubmittedAt string `json:"submitted_at"`
	Year        int    `json:"year,omitempty"`
	Month       int    `json:"month,omitempty"`
}

func (r *SubmittedAtRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SubmittedAt) {
		errs = append(errs, validator.ValidationError{
			Field:   "submitted_at",
			Message: "submitted_at is required",
		})
	} else if _, err := localdate.ParseTimestamp(r.SubmittedAt); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "submitted_at",
			Message: "submitted_at must be an RFC3339 timestamp",
		})
	}

	if r.Year != 0 || r.Month != 0 {
		if err := validateSegment(r.Year, r.Month); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				errs = append(errs, verrs...)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Segments lists the segments to search, see SubmissionSegments. Validate must pass first.
func (r *SubmittedAtRequest) Segments() []Segment {
	ts, _ := localdate.ParseTimestamp(r.SubmittedAt)
	return SubmissionSegments(ts, r.Year, r.Month)
}

// Key converts the request into a record key.
func (r *SubmittedAtRequest) Key() Key {
	return BySubmittedAt(strings.TrimSpace(r.SubmittedAt))
}

// ========================================
// APPROVAL DTOs
// ========================================

// ApproveRequest identifies a record by exactly one of: driver_name + date,
// submitted_at, or year + month + row. With submitted_at, year and month optionally
// name the segment.
type ApproveRequest struct {
	DriverName  string `json:"driver_name,omitempty"`
	Date        string `json:"date,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"`
	Year        int    `json:"year,omitempty"`
	Month       int    `json:"month,omitempty"`
	Row         int    `json:"row,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	forms := 0
	if !validator.IsEmpty(r.DriverName) || !validator.IsEmpty(r.Date) {
		forms++
		if validator.IsEmpty(r.DriverName) || validator.IsEmpty(r.Date) {
			errs = append(errs, validator.ValidationError{
				Field:   "driver_name",
				Message: "driver_name and date must be provided together",
			})
		}
	}
	if !validator.IsEmpty(r.SubmittedAt) {
		forms++
		if _, ok := validator.IsValidDateTime(r.SubmittedAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "submitted_at",
				Message: "submitted_at must be an RFC3339 timestamp",
			})
		}
		if r.Row == 0 && (r.Year != 0 || r.Month != 0) {
			if err := validateSegment(r.Year, r.Month); err != nil {
				if verrs, ok := err.(validator.ValidationErrors); ok {
					errs = append(errs, verrs...)
				}
			}
		}
	}
	if r.Row != 0 {
		forms++
		if r.Row < 2 {
			errs = append(errs, validator.ValidationError{
				Field:   "row",
				Message: "row must be 2 or greater, row 1 is the header",
			})
		}
		if err := validateSegment(r.Year, r.Month); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				errs = append(errs, verrs...)
			}
		}
	}

	if forms != 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "key",
			Message: "provide exactly one of: driver_name+date, submitted_at, year+month+row",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Key converts the request into a record key. Validate must pass first.
func (r *ApproveRequest) Key() Key {
	switch {
	case r.SubmittedAt != "":
		return BySubmittedAt(r.SubmittedAt)
	case r.Row != 0:
		return ByRow(r.Row)
	default:
		return ByDriverDate(r.DriverName, r.Date)
	}
}

type ApproveLatestRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *ApproveLatestRequest) Validate() error {
	return validateSegment(r.Year, r.Month)
}

func (r *ApproveLatestRequest) Segment() Segment {
	return Segment{Year: localdate.NormalizeYear(r.Year), Month: time.Month(r.Month)}
}

type ApprovalResponse struct {
	Segment        string         `json:"segment"`
	Row            int            `json:"row"`
	PreviousStatus string         `json:"previous_status"`
	Status         string         `json:"status"`
	Record         RecordResponse `json:"record"`
}

// ========================================
// SEGMENT DTOs
// ========================================

type ProvisionRequest struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Schema  string `json:"schema,omitempty"` // OLD or NEW, default NEW
	Replace bool   `json:"replace"`
}

func (r *ProvisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := validateSegment(r.Year, r.Month); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		}
	}

	if r.Schema != "" && !ParseSchemaVersion(r.Schema).Concrete() {
		errs = append(errs, validator.ValidationError{
			Field:   "schema",
			Message: "schema must be one of: OLD, NEW",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *ProvisionRequest) Segment() Segment {
	return Segment{Year: localdate.NormalizeYear(r.Year), Month: time.Month(r.Month)}
}

// SchemaVersion returns the requested layout, NEW when none was given.
func (r *ProvisionRequest) SchemaVersion() SchemaVersion {
	if r.Schema == "" {
		return SchemaNew
	}
	return ParseSchemaVersion(r.Schema)
}

type ProvisionResponse struct {
	Segment  string `json:"segment"`
	Schema   string `json:"schema"`
	Created  bool   `json:"created"`
	Replaced bool   `json:"replaced"`
}

func validateSegment(year, month int) error {
	var errs validator.ValidationErrors

	if !validator.IsValidYear(year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year %d is out of range", year),
		})
	}

	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
