package handler

import (
	"net/http"
	"strconv"
	"strings"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/middleware"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
)

// AdminHandler exposes the admin audit log
type AdminHandler struct {
	audit  *service.AuditService
	logger *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(audit *service.AuditService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{audit: audit, logger: logger}
}

// AuditNoteRequest is a free-text audit entry
type AuditNoteRequest struct {
	Description string `json:"description"`
}

// ListAudit handles GET /api/admin/audit?limit=N
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, r, errors.NewFieldValidationError(map[string]string{"limit": "Limit must be a positive number"}), h.logger)
			return
		}
		limit = n
	}

	entries, err := h.audit.List(r.Context(), middleware.SessionFrom(r.Context()), limit)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	respondJSON(w, http.StatusOK, entries, h.logger)
}

// AddNote handles POST /api/admin/audit
func (h *AdminHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AuditNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondError(w, r, errors.NewFieldValidationError(map[string]string{"description": "Description is required"}), h.logger)
		return
	}

	h.audit.Log(r.Context(), middleware.SessionFrom(r.Context()), domain.FreeTextAction{Description: strings.TrimSpace(req.Description)})
	respondMessage(w, http.StatusCreated, "Note recorded", h.logger)
}
