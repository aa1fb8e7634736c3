package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/service"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"

	"github.com/google/uuid"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// SessionContextKey is the key for the caller's session in context
	SessionContextKey ContextKey = "session"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// WithSession stores the caller's session in ctx
func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

// SessionFrom returns the session set by Auth or OptionalAuth. Requests
// without one get an anonymous session.
func SessionFrom(ctx context.Context) domain.Session {
	session, _ := ctx.Value(SessionContextKey).(domain.Session)
	return session
}

// RequestIDFrom returns the request ID set by RequestID
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) (string, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.NewAuthenticationError("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.NewAuthenticationError("Invalid authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", errors.NewAuthenticationError("Token is required")
	}
	return token, nil
}

// Auth creates an authentication middleware
func Auth(authenticator service.Authenticator, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := bearerToken(r)
			if appErr != nil {
				WriteError(w, r, appErr, logger)
				return
			}

			ctx := r.Context()
			session, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				WriteError(w, r, err, logger)
				return
			}

			logger.WithUser(session.UserID).Debug("User authenticated successfully")
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, *session)))
		})
	}
}

// OptionalAuth creates an optional authentication middleware
// If token is provided, it validates it, otherwise continues without authentication
func OptionalAuth(authenticator service.Authenticator, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			Auth(authenticator, logger)(next).ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Auth.
func RequireAdmin(access *service.AccessService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.RequireAdmin(r.Context(), SessionFrom(r.Context())); err != nil {
				WriteError(w, r, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteError writes err as the standard error envelope. Retryable faults
// are logged at error, everything else at debug.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	appErr := errors.AsAppError(err)
	requestID := RequestIDFrom(r.Context())

	log := logger.WithRequest(requestID, r.Method, r.URL.Path).
		WithUser(SessionFrom(r.Context()).UserID).
		WithError(appErr).
		WithField("status", appErr.StatusCode)
	if appErr.Retryable() {
		log.Error("Request failed")
	} else {
		log.Debug("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.RequestID = requestID
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
