package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/response"
)

type ApprovalHandler interface {
	Approve(w http.ResponseWriter, r *http.Request)
	ApproveLatest(w http.ResponseWriter, r *http.Request)
	Deny(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService ledger.ApprovalService
}

func NewApprovalHandler(approvalService ledger.ApprovalService) ApprovalHandler {
	return &approvalHandlerImpl{
		approvalService: approvalService,
	}
}

// Approve implements ApprovalHandler.
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req ledger.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode approve request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance approved", result)
}

// ApproveLatest implements ApprovalHandler.
func (h *approvalHandlerImpl) ApproveLatest(w http.ResponseWriter, r *http.Request) {
	var req ledger.ApproveLatestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode approve latest request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.ApproveMostRecentPending(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Most recent pending attendance approved", result)
}

// Deny implements ApprovalHandler.
func (h *approvalHandlerImpl) Deny(w http.ResponseWriter, r *http.Request) {
	var req ledger.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode deny request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Deny(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance denied", result)
}
