package handler

import (
	"io"
	"net/http"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/middleware"
	"cricket-hub/internal/rules"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// TeamHandler handles team registration, rosters and logos
type TeamHandler struct {
	teams  *service.TeamService
	logger *logger.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *service.TeamService, logger *logger.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

// RosterCheckRequest is the body of POST /api/teams/roster/check
type RosterCheckRequest struct {
	Members   []domain.TeamMember `json:"members"`
	Candidate domain.TeamMember   `json:"candidate"`
}

// RosterCheckResponse tells the client whether the candidate fits
type RosterCheckResponse struct {
	Allowed bool                `json:"allowed"`
	Reason  *rules.RosterReason `json:"reason,omitempty"`
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, teams, h.logger)
}

// Get handles GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team, h.logger)
}

// CheckRoster handles POST /api/teams/roster/check
func (h *TeamHandler) CheckRoster(w http.ResponseWriter, r *http.Request) {
	var req RosterCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	why, err := h.teams.CheckAddition(r.Context(), middleware.SessionFrom(r.Context()), req.Members, req.Candidate)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, RosterCheckResponse{Allowed: why == nil, Reason: why}, h.logger)
}

// Register handles POST /api/teams
func (h *TeamHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.TeamRegistration
	if err := decodeJSON(w, r, &reg); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	team, err := h.teams.Register(r.Context(), middleware.SessionFrom(r.Context()), reg)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, team, h.logger)
}

// UploadLogo handles POST /api/teams/{id}/logo with a multipart "logo" file
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxLogoBytes+(64<<10))
	if err := r.ParseMultipartForm(service.MaxLogoBytes); err != nil {
		respondError(w, r, errors.NewFieldValidationError(map[string]string{
			"logo": "Logo must be an image of at most 2 MB",
		}), h.logger)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		respondError(w, r, errors.NewFieldValidationError(map[string]string{"logo": "Logo file is required"}), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, errors.NewInternalError("Failed to read upload", err), h.logger)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	team, err := h.teams.UploadLogo(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"), service.LogoUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team, h.logger)
}

// Delete handles DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.Delete(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondMessage(w, http.StatusOK, "Team deleted", h.logger)
}
