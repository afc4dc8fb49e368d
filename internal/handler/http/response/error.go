package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Lookup outcomes
	case errors.Is(err, ledger.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, ledger.ErrNoPendingRecords):
		NotFound(w, "No pending attendance records")
	case errors.Is(err, ledger.ErrSegmentNotFound):
		NotFound(w, "Attendance segment not found")
	case errors.Is(err, ledger.ErrSegmentExists):
		Conflict(w, "Attendance segment already exists")

	// Input errors
	case errors.Is(err, ledger.ErrInvalidKey):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, localdate.ErrInvalidDate):
		ValidationError(w, map[string]string{"date": "date must be in DD/MM/YYYY format"})
	case errors.Is(err, localdate.ErrInvalidTime):
		ValidationError(w, map[string]string{"time": "time must be in HH:MM format"})

	// Transitions
	case errors.Is(err, ledger.ErrDenyNotSupported):
		NotImplemented(w, "Deny is not supported yet")

	// Backing store
	case errors.Is(err, ledger.ErrSchemaUnknown):
		slog.Error("write blocked on unknown schema", "error", err)
		ServiceUnavailable(w, "SCHEMA_UNKNOWN", "Segment layout could not be determined, try again later")
	case errors.Is(err, ledger.ErrStorageUnavailable):
		slog.Error("attendance storage unavailable", "error", err)
		ServiceUnavailable(w, "STORAGE_UNAVAILABLE", "Attendance storage is unavailable, try again later")

	// Auth
	case errors.Is(err, jwt.ErrInvalidRole):
		Forbidden(w, "Insufficient role")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
