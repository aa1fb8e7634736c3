package handler

import (
	"net/http"
	"time"

	"cricket-hub/internal/middleware"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Tournament *TournamentHandler
	Match      *MatchHandler
	Team       *TeamHandler
	Admin      *AdminHandler
}

// RouterConfig carries what the middleware chain needs
type RouterConfig struct {
	AllowedOrigins []string
	Authenticator  service.Authenticator
	Access         *service.AccessService
	Logger         *logger.Logger
}

// NewRouter configures and returns the HTTP router
func NewRouter(h *Handlers, cfg RouterConfig) *chi.Mux {
	log := cfg.Logger
	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.NewCORSConfig(cfg.AllowedOrigins), log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	requireAuth := middleware.Auth(cfg.Authenticator, log)
	requireAdmin := middleware.RequireAdmin(cfg.Access, log)

	r.Get("/health", h.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/signin/{provider}", h.Auth.SignIn)
			r.Post("/callback", h.Auth.Callback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", h.Auth.Me)
				r.Post("/signout", h.Auth.SignOut)
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Profile.Get)
			r.Put("/", h.Profile.Update)
			r.Get("/status", h.Profile.Status)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.Get("/upcoming", h.Tournament.Upcoming)
			r.Get("/{id}", h.Tournament.Get)
			r.Get("/{id}/matches", h.Tournament.Matches)
			r.Get("/{id}/entries", h.Tournament.Entries)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{id}/entries", h.Tournament.Enter)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", h.Tournament.Create)
				r.Put("/{id}", h.Tournament.Update)
				r.Delete("/{id}", h.Tournament.Delete)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/{id}", h.Match.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", h.Match.Create)
				r.Put("/{id}", h.Match.Update)
				r.Delete("/{id}", h.Match.Delete)
				r.Post("/{id}/result", h.Match.RecordResult)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.List)
			r.Get("/{id}", h.Team.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.Team.Register)
				r.Post("/roster/check", h.Team.CheckRoster)
				r.Post("/{id}/logo", h.Team.UploadLogo)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Delete("/{id}", h.Team.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/audit", h.Admin.ListAudit)
			r.Post("/audit", h.Admin.AddNote)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, errors.NewNotFoundError("Endpoint not found"), log)
	})

	log.Info("Router configured successfully")
	return r
}
