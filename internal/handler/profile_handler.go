package handler

import (
	"net/http"

	"cricket-hub/internal/middleware"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/logger"
)

// ProfileHandler handles the signed-in user's player profile
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *service.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Get handles GET /api/profile. A user without a profile gets null data.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, p, h.logger)
}

// Status handles GET /api/profile/status
func (h *ProfileHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.profiles.Status(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, status, h.logger)
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	p, err := h.profiles.Complete(r.Context(), middleware.SessionFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, p, h.logger)
}
