package handler

import (
	"net/http"

	"cricket-hub/internal/middleware"
	"cricket-hub/internal/rules"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// TournamentHandler handles tournaments, their entries and fixtures
type TournamentHandler struct {
	tournaments *service.TournamentService
	matches     *service.MatchService
	upcoming    *service.UpcomingService
	logger      *logger.Logger
}

// NewTournamentHandler creates a new tournament handler
func NewTournamentHandler(tournaments *service.TournamentService, matches *service.MatchService, upcoming *service.UpcomingService, logger *logger.Logger) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments, matches: matches, upcoming: upcoming, logger: logger}
}

// List handles GET /api/tournaments
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.tournaments.List(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, list, h.logger)
}

// Upcoming handles GET /api/tournaments/upcoming
func (h *TournamentHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	p, err := h.upcoming.Current(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=10")
	respondJSON(w, http.StatusOK, p, h.logger)
}

// Get handles GET /api/tournaments/{id}
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournaments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, t, h.logger)
}

// Create handles POST /api/tournaments
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in rules.TournamentInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	t, err := h.tournaments.Create(r.Context(), middleware.SessionFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, t, h.logger)
}

// Update handles PUT /api/tournaments/{id}
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in rules.TournamentInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	t, err := h.tournaments.Update(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, t, h.logger)
}

// Delete handles DELETE /api/tournaments/{id}
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tournaments.Delete(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondMessage(w, http.StatusOK, "Tournament deleted", h.logger)
}

// Matches handles GET /api/tournaments/{id}/matches
func (h *TournamentHandler) Matches(w http.ResponseWriter, r *http.Request) {
	list, err := h.matches.ListByTournament(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, list, h.logger)
}

// Entries handles GET /api/tournaments/{id}/entries
func (h *TournamentHandler) Entries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tournaments.ListEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, entries, h.logger)
}

// Enter handles POST /api/tournaments/{id}/entries
func (h *TournamentHandler) Enter(w http.ResponseWriter, r *http.Request) {
	entry, err := h.tournaments.EnterTeam(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, entry, h.logger)
}
