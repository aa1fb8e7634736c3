package handler

import (
	"net/http"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/middleware"
	"cricket-hub/internal/service"
	"cricket-hub/internal/service/auth"
	"cricket-hub/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// AuthHandler handles sign-in, sign-out and the current user
type AuthHandler struct {
	auth     *auth.Service
	access   *service.AccessService
	profiles *service.ProfileService
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, access *service.AccessService, profiles *service.ProfileService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, access: access, profiles: profiles, logger: logger}
}

// CallbackRequest is the body of POST /api/auth/callback
type CallbackRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
}

// SignIn handles GET /api/auth/signin/{provider}
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.auth.SignIn(chi.URLParam(r, "provider"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, redirect, h.logger)
}

// Callback handles POST /api/auth/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	tokens, err := h.auth.Callback(r.Context(), req.Code, req.CodeVerifier)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, tokens, h.logger)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.SessionFrom(ctx)

	role, err := h.access.Role(ctx, session)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	status, err := h.profiles.Status(ctx, session)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, domain.Me{
		User: &domain.User{
			ID:       session.UserID,
			Email:    session.Email,
			Metadata: session.Metadata,
		},
		Role:    role,
		IsAdmin: role != nil && *role == h.access.AdminRole(),
		Profile: status,
	}, h.logger)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.SessionFrom(ctx)
	if err := h.auth.SignOut(ctx, session); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	h.access.Forget(ctx, session.UserID)
	respondMessage(w, http.StatusOK, "Signed out", h.logger)
}
