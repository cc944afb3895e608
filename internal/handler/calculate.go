package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opmeter/opmeter/internal/auth"
	"github.com/opmeter/opmeter/internal/handler/dto"
	"github.com/opmeter/opmeter/internal/service"
)

// CalculateHandler handles the metered invocation endpoint.
type CalculateHandler struct {
	svc    *service.TransactionService
	logger *slog.Logger
}

// NewCalculateHandler creates a new CalculateHandler.
func NewCalculateHandler(svc *service.TransactionService, logger *slog.Logger) *CalculateHandler {
	return &CalculateHandler{
		svc:    svc,
		logger: logger,
	}
}

// Calculate handles POST /calculate/. Requires auth middleware; the
// user in context carries the balance snapshot used for admission.
//
// This endpoint is not idempotent: each call debits and records again.
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	rec, err := h.svc.Calculate(r.Context(), user, req.OperationID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("transaction_settled",
		"record_id", rec.ID,
		"user_id", rec.UserID,
		"operation_id", rec.OperationID,
		"amount", rec.Amount.String(),
		"user_balance", rec.UserBalance.String(),
	)

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// handleServiceError maps transaction service errors to HTTP responses.
func (h *CalculateHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOperationNotFound):
		writeError(w, http.StatusNotFound, "OPERATION_NOT_FOUND", "Operation not found")
	case errors.Is(err, service.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", "Balance does not cover the operation cost")
	case errors.Is(err, service.ErrUnsupportedOperationType):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_OPERATION_TYPE", "Operation type is not supported")
	case errors.Is(err, service.ErrExecutionFailed):
		writeError(w, http.StatusBadRequest, "EXECUTION_FAILED", "Operation execution failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
