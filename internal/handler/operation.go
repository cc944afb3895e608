package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opmeter/opmeter/internal/handler/dto"
	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/service"
)

// OperationHandler handles catalog endpoints.
type OperationHandler struct {
	svc    *service.OperationService
	logger *slog.Logger
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(svc *service.OperationService, logger *slog.Logger) *OperationHandler {
	return &OperationHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /operations/.
func (h *OperationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	op, err := h.svc.Create(r.Context(), model.OperationType(req.Type), req.Cost)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("operation_created",
		"operation_id", op.ID,
		"type", op.Type,
		"cost", op.Cost.String(),
	)

	writeJSON(w, http.StatusOK, dto.ToOperationResponse(op))
}

// List handles GET /operations/.
func (h *OperationHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := paginationParams(r)

	ops, err := h.svc.List(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOperationListResponse(ops))
}

// handleServiceError maps operation service errors to HTTP responses.
func (h *OperationHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidOperationType):
		writeError(w, http.StatusBadRequest, "INVALID_OPERATION_TYPE", "Unknown operation type")
	case errors.Is(err, service.ErrNegativeCost):
		writeError(w, http.StatusBadRequest, "NEGATIVE_COST", "Operation cost must not be negative")
	case errors.Is(err, service.ErrOperationNotFound):
		writeError(w, http.StatusNotFound, "OPERATION_NOT_FOUND", "Operation not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// paginationParams parses skip/limit query parameters. Missing or
// malformed values fall back to zero; services normalize from there.
func paginationParams(r *http.Request) (skip, limit int) {
	query := r.URL.Query()
	if s := query.Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			skip = parsed
		}
	}
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	return skip, limit
}
