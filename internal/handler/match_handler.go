package handler

import (
	"net/http"

	"cricket-hub/internal/middleware"
	"cricket-hub/internal/rules"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// MatchHandler handles fixtures and results
type MatchHandler struct {
	matches *service.MatchService
	logger  *logger.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches *service.MatchService, logger *logger.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// Get handles GET /api/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.matches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, m, h.logger)
}

// Create handles POST /api/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in rules.MatchInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	m, err := h.matches.Create(r.Context(), middleware.SessionFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, m, h.logger)
}

// Update handles PUT /api/matches/{id}
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.MatchScheduleInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	m, err := h.matches.Update(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, m, h.logger)
}

// RecordResult handles POST /api/matches/{id}/result
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var in rules.ResultInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	m, err := h.matches.RecordResult(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, m, h.logger)
}

// Delete handles DELETE /api/matches/{id}
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.matches.Delete(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondMessage(w, http.StatusOK, "Match deleted", h.logger)
}
