package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/overtime"
)

type LedgerServiceImpl struct {
	writer   *Writer
	repo     ledger.Repository
	calc     overtime.Calculator
	notifier notification.Service
	names    ledger.NameMatch
	now      func() time.Time
}

// NewLedgerService creates the attendance ledger service. notifier may be nil.
func NewLedgerService(writer *Writer, repo ledger.Repository, calc overtime.Calculator, notifier notification.Service, names ledger.NameMatch) ledger.LedgerService {
	return &LedgerServiceImpl{
		writer:   writer,
		repo:     repo,
		calc:     calc,
		notifier: notifier,
		names:    names,
		now:      time.Now,
	}
}

// ClockIn implements ledger.LedgerService.
func (s *LedgerServiceImpl) ClockIn(ctx context.Context, req ledger.ClockEventRequest) (ledger.UpsertResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.UpsertResponse{}, err
	}

	changes := ledger.Changes{
		ledger.FieldClockIn:     req.Time,
		ledger.FieldSubmittedAt: localdate.Timestamp(s.now()),
	}
	if req.Comments != nil {
		changes[ledger.FieldComments] = *req.Comments
	}

	result, err := s.writer.Upsert(ctx, UpsertInput{
		DriverName: req.DriverName,
		Date:       req.Date,
		Changes:    changes,
	})
	if err != nil {
		return ledger.UpsertResponse{}, err
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Topic:    notification.DriverTopic(result.Record.DriverName),
		Type:     notification.TypeClockIn,
		Title:    "Clock in",
		Message:  fmt.Sprintf("%s clocked in at %s on %s", result.Record.DriverName, req.Time, result.Record.Date),
		Data:     recordData(result),
		DedupKey: dedupKey(notification.TypeClockIn, result.Record, req.Time),
	})

	return toUpsertResponse(result), nil
}

// ClockOut implements ledger.LedgerService.
func (s *LedgerServiceImpl) ClockOut(ctx context.Context, req ledger.ClockEventRequest) (ledger.UpsertResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.UpsertResponse{}, err
	}

	changes := ledger.Changes{
		ledger.FieldClockOut:    req.Time,
		ledger.FieldSubmittedAt: localdate.Timestamp(s.now()),
	}
	if req.Comments != nil {
		changes[ledger.FieldComments] = *req.Comments
	}

	result, err := s.writer.Upsert(ctx, UpsertInput{
		DriverName:       req.DriverName,
		Date:             req.Date,
		Changes:          changes,
		SuppressOvertime: req.SkipOvertime,
	})
	if err != nil {
		return ledger.UpsertResponse{}, err
	}

	message := fmt.Sprintf("%s clocked out at %s on %s", result.Record.DriverName, req.Time, result.Record.Date)
	if result.Overtime != nil {
		message += ". " + result.Overtime.Message()
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Topic:    notification.DriverTopic(result.Record.DriverName),
		Type:     notification.TypeClockOut,
		Title:    "Clock out",
		Message:  message,
		Data:     recordData(result),
		DedupKey: dedupKey(notification.TypeClockOut, result.Record, req.Time),
	})

	return toUpsertResponse(result), nil
}

// Upsert implements ledger.LedgerService.
func (s *LedgerServiceImpl) Upsert(ctx context.Context, req ledger.UpsertRequest) (ledger.UpsertResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.UpsertResponse{}, err
	}

	result, err := s.writer.Upsert(ctx, UpsertInput{
		DriverName:       req.DriverName,
		Date:             req.Date,
		Changes:          req.Changes(),
		SuppressOvertime: req.SuppressOvertime,
	})
	if err != nil {
		return ledger.UpsertResponse{}, err
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Topic:   notification.DriverTopic(result.Record.DriverName),
		Type:    notification.TypeRecordUpdated,
		Title:   "Attendance updated",
		Message: fmt.Sprintf("Attendance of %s on %s was updated", result.Record.DriverName, result.Record.Date),
		Data:    recordData(result),
	})

	return toUpsertResponse(result), nil
}

// GetRecord implements ledger.LedgerService.
func (s *LedgerServiceImpl) GetRecord(ctx context.Context, driverName string, date string) (ledger.RecordResponse, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(driverName) {
		errs = append(errs, validator.ValidationError{Field: "driver_name", Message: "driver_name is required"})
	}
	day, ok := validator.IsValidLedgerDate(date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in DD/MM/YYYY format"})
	}
	if len(errs) > 0 {
		return ledger.RecordResponse{}, errs
	}

	rec, err := s.find(ctx, ledger.SegmentFor(day), ledger.ByDriverDate(driverName, date))
	if err != nil {
		return ledger.RecordResponse{}, err
	}
	return ledger.NewRecordResponse(rec), nil
}

// GetBySubmittedAt implements ledger.LedgerService. Without an explicit segment the
// timestamp's month is searched first, then the month before it.
func (s *LedgerServiceImpl) GetBySubmittedAt(ctx context.Context, req ledger.SubmittedAtRequest) (ledger.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.RecordResponse{}, err
	}

	segments := req.Segments()
	for _, segment := range segments {
		rec, err := s.find(ctx, segment, req.Key())
		if err == nil {
			return ledger.NewRecordResponse(rec), nil
		}
		if !errors.Is(err, ledger.ErrRecordNotFound) && !errors.Is(err, ledger.ErrSegmentNotFound) {
			return ledger.RecordResponse{}, err
		}
	}
	return ledger.RecordResponse{}, notSubmitted(req.Key(), segments)
}

// LatestForDriver implements ledger.LedgerService.
func (s *LedgerServiceImpl) LatestForDriver(ctx context.Context, req ledger.LatestRecordRequest) (ledger.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.RecordResponse{}, err
	}

	records, _, err := s.scan(ctx, req.Segment())
	if err != nil {
		return ledger.RecordResponse{}, err
	}

	for i := len(records) - 1; i >= 0; i-- {
		if s.names.Equal(records[i].DriverName, req.DriverName) {
			return ledger.NewRecordResponse(records[i]), nil
		}
	}
	return ledger.RecordResponse{}, fmt.Errorf("%w: no record of %q in %s", ledger.ErrRecordNotFound, req.DriverName, req.Segment().Name())
}

// ListRecords implements ledger.LedgerService.
func (s *LedgerServiceImpl) ListRecords(ctx context.Context, req ledger.ListRecordsRequest) (ledger.ListRecordsResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.ListRecordsResponse{}, err
	}

	segment := req.Segment()
	records, version, err := s.scan(ctx, segment)
	if err != nil {
		return ledger.ListRecordsResponse{}, err
	}

	out := make([]ledger.RecordResponse, 0, len(records))
	for _, rec := range records {
		if req.DriverName != nil && !s.names.Equal(rec.DriverName, *req.DriverName) {
			continue
		}
		if req.PendingOnly && !rec.Approval.IsPending() {
			continue
		}
		out = append(out, ledger.NewRecordResponse(rec))
	}

	return ledger.ListRecordsResponse{
		Segment:    segment.Name(),
		Schema:     string(version),
		TotalCount: len(out),
		Records:    out,
	}, nil
}

// PreviewOvertime implements ledger.LedgerService.
func (s *LedgerServiceImpl) PreviewOvertime(ctx context.Context, req ledger.OvertimePreviewRequest) (ledger.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.OvertimeResponse{}, err
	}

	day, _ := validator.IsValidLedgerDate(req.Date)
	return toOvertimeResponse(s.calc.Compute(req.ClockIn, req.ClockOut, day)), nil
}

func (s *LedgerServiceImpl) find(ctx context.Context, segment ledger.Segment, key ledger.Key) (ledger.Record, error) {
	version, err := s.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessRead)
	if err != nil {
		return ledger.Record{}, err
	}
	return s.repo.Find(ctx, segment.Name(), version, key)
}

func (s *LedgerServiceImpl) scan(ctx context.Context, segment ledger.Segment) ([]ledger.Record, ledger.SchemaVersion, error) {
	version, err := s.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessRead)
	if err != nil {
		return nil, ledger.SchemaUnknown, err
	}
	records, err := s.repo.Scan(ctx, segment.Name(), version)
	if err != nil {
		return nil, ledger.SchemaUnknown, err
	}
	return records, version, nil
}

func (s *LedgerServiceImpl) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Queue(ctx, req); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("failed to queue notification", "type", req.Type, "error", err)
	}
}

func notSubmitted(key ledger.Key, segments []ledger.Segment) error {
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = seg.Name()
	}
	return fmt.Errorf("%w: %s in %s", ledger.ErrRecordNotFound, key, strings.Join(names, ", "))
}

func dedupKey(kind notification.NotificationType, rec ledger.Record, clock string) string {
	return strings.Join([]string{string(kind), rec.DriverName, rec.Date, clock}, "|")
}

func recordData(result UpsertResult) map[string]interface{} {
	data := map[string]interface{}{
		"segment":     result.Segment.Name(),
		"row":         result.Record.RowIndex,
		"driver_name": result.Record.DriverName,
		"date":        result.Record.Date,
		"created":     result.Created,
	}
	if result.Overtime != nil {
		data["ot_hours"] = result.Overtime.Hours()
	}
	return data
}

func toUpsertResponse(result UpsertResult) ledger.UpsertResponse {
	resp := ledger.UpsertResponse{
		Created:  result.Created,
		RowIndex: result.Record.RowIndex,
		Segment:  result.Segment.Name(),
		Schema:   string(result.Schema),
		Record:   ledger.NewRecordResponse(result.Record),
	}
	if result.Overtime != nil {
		ot := toOvertimeResponse(*result.Overtime)
		resp.Overtime = &ot
	}
	return resp
}

func toOvertimeResponse(r overtime.Result) ledger.OvertimeResponse {
	return ledger.OvertimeResponse{
		MorningHours: r.Morning.StringFixed(2),
		EveningHours: r.Evening.StringFixed(2),
		TotalHours:   r.Hours(),
		Start:        r.Start,
		End:          r.End,
		Disabled:     r.Disabled,
		Reason:       string(r.Reason),
		Message:      r.Message(),
	}
}
