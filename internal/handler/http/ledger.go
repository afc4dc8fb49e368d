package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LedgerHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetBySubmittedAt(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Latest(w http.ResponseWriter, r *http.Request)
	PreviewOvertime(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService ledger.LedgerService
}

func NewLedgerHandler(ledgerService ledger.LedgerService) LedgerHandler {
	return &ledgerHandlerImpl{
		ledgerService: ledgerService,
	}
}

// ClockIn implements LedgerHandler.
func (h *ledgerHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req ledger.ClockEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode clock in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.ledgerService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeUpsert(w, "Clock in recorded", result)
}

// ClockOut implements LedgerHandler.
func (h *ledgerHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req ledger.ClockEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode clock out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.ledgerService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeUpsert(w, "Clock out recorded", result)
}

// Upsert implements LedgerHandler.
func (h *ledgerHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req ledger.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode upsert request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.ledgerService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeUpsert(w, "Attendance record saved", result)
}

// Get implements LedgerHandler.
func (h *ledgerHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.ledgerService.GetRecord(r.Context(), q.Get("driver_name"), q.Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBySubmittedAt implements LedgerHandler. The year and month query parameters are
// optional and pin the segment.
func (h *ledgerHandlerImpl) GetBySubmittedAt(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var errs validator.ValidationErrors
	year, ok := optionalInt(query.Get("year"))
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
	}
	month, ok := optionalInt(query.Get("month"))
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.ledgerService.GetBySubmittedAt(r.Context(), ledger.SubmittedAtRequest{
		SubmittedAt: query.Get("submitted_at"),
		Year:        year,
		Month:       month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements LedgerHandler.
func (h *ledgerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year, month, err := segmentParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := ledger.ListRecordsRequest{
		Year:        year,
		Month:       month,
		PendingOnly: r.URL.Query().Get("pending_only") == "true",
	}
	if name := r.URL.Query().Get("driver_name"); name != "" {
		req.DriverName = &name
	}

	result, err := h.ledgerService.ListRecords(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Latest implements LedgerHandler.
func (h *ledgerHandlerImpl) Latest(w http.ResponseWriter, r *http.Request) {
	year, month, err := segmentParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.ledgerService.LatestForDriver(r.Context(), ledger.LatestRecordRequest{
		DriverName: r.URL.Query().Get("driver_name"),
		Year:       year,
		Month:      month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// PreviewOvertime implements LedgerHandler.
func (h *ledgerHandlerImpl) PreviewOvertime(w http.ResponseWriter, r *http.Request) {
	var req ledger.OvertimePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode overtime preview request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.ledgerService.PreviewOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

func writeUpsert(w http.ResponseWriter, message string, result ledger.UpsertResponse) {
	if result.Overtime != nil {
		message += ". " + result.Overtime.Message
	}
	if result.Created {
		response.Created(w, message, result)
		return
	}
	response.SuccessWithMessage(w, message, result)
}

// segmentParams reads the {year}/{month} path parameters
func segmentParams(r *http.Request) (int, int, error) {
	var errs validator.ValidationErrors

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return year, month, nil
}

func optionalInt(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}
