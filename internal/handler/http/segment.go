package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/response"
)

type SegmentHandler interface {
	Provision(w http.ResponseWriter, r *http.Request)
}

type segmentHandlerImpl struct {
	provisioner ledger.SegmentProvisioner
}

func NewSegmentHandler(provisioner ledger.SegmentProvisioner) SegmentHandler {
	return &segmentHandlerImpl{
		provisioner: provisioner,
	}
}

// Provision implements SegmentHandler.
func (h *segmentHandlerImpl) Provision(w http.ResponseWriter, r *http.Request) {
	var req ledger.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode provision request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.provisioner.Provision(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance segment provisioned", result)
}
