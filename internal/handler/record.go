package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opmeter/opmeter/internal/auth"
	"github.com/opmeter/opmeter/internal/handler/dto"
	"github.com/opmeter/opmeter/internal/service"
)

// RecordHandler handles ledger record endpoints. All routes require
// auth middleware; every query is scoped to the caller.
type RecordHandler struct {
	svc    *service.RecordService
	logger *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(svc *service.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /records/.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	skip, limit := paginationParams(r)
	search := r.URL.Query().Get("search")

	records, err := h.svc.List(r.Context(), user.ID, skip, limit, search)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecordListResponse(records))
}

// Get handles GET /records/{id}. Point lookups also return tombstoned
// records, with deleted=true.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := recordID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Record ID must be an integer")
		return
	}

	rec, err := h.svc.Get(r.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// Delete handles DELETE /records/{id}. The record is tombstoned, not
// removed; deleting an already-tombstoned record succeeds again.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := recordID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Record ID must be an integer")
		return
	}

	rec, err := h.svc.SoftDelete(r.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("record_deleted",
		"record_id", rec.ID,
		"user_id", rec.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// handleServiceError maps record service errors to HTTP responses.
// Foreign records surface as not-found so record IDs cannot be probed.
func (h *RecordHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "RECORD_NOT_FOUND", "Record not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// recordID parses the {id} route parameter.
func recordID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
