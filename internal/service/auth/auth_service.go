package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Service turns bearer tokens into sessions and drives provider sign-in
type Service struct {
	auth        gateway.Auth
	jwtSecret   []byte
	redirectURL string
	logger      *logger.Logger
	now         func() time.Time
}

// NewService creates a new auth service. With a JWT secret, tokens are
// verified locally; otherwise each token is checked against the auth service.
func NewService(auth gateway.Auth, jwtSecret, redirectURL string, logger *logger.Logger) *Service {
	var secret []byte
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	return &Service{
		auth:        auth,
		jwtSecret:   secret,
		redirectURL: redirectURL,
		logger:      logger,
		now:         time.Now,
	}
}

// Authenticate validates an access token and returns the caller's session
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, errors.NewAuthenticationError("Token is required")
	}
	if !isJWTToken(token) {
		return nil, errors.NewAuthenticationError("Unrecognized token format")
	}
	if s.jwtSecret != nil {
		return s.validateSupabaseJWT(token)
	}
	return s.validateRemotely(ctx, token)
}

// validateSupabaseJWT verifies an HS256 Supabase access token
func (s *Service) validateSupabaseJWT(tokenString string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		s.logger.WithError(err).Debug("JWT validation failed")
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthenticationError("Token has expired")
		}
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	session := &domain.Session{
		UserID:      getStringValue(claims, "sub"),
		Email:       getStringValue(claims, "email"),
		AccessToken: tokenString,
	}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		session.Metadata = meta
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}

	if session.UserID == "" {
		s.logger.Error("No user identifier found in JWT token")
		return nil, errors.NewAuthenticationError("Invalid JWT token: no user identifier")
	}

	s.logger.WithUser(session.UserID).Debug("Supabase JWT token validated successfully")
	return session, nil
}

// validateRemotely asks the auth service who owns the token
func (s *Service) validateRemotely(ctx context.Context, token string) (*domain.Session, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		s.logger.WithError(err).Error("Failed to look up current user")
		return nil, errors.NewBackendFault(err)
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	session := &domain.Session{
		UserID:      user.ID,
		Email:       user.Email,
		Metadata:    user.Metadata,
		AccessToken: token,
	}

	// The expiry is informational here; the auth service already accepted it
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			session.ExpiresAt = exp.Time
		}
	}
	return session, nil
}

// SignIn returns the provider authorize URL and the PKCE verifier the
// client must send back with the code
func (s *Service) SignIn(provider string) (*domain.SignInRedirect, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, errors.NewValidationError("Provider is required", map[string]interface{}{"provider": "Provider is required"})
	}
	redirect, err := s.auth.SignInWithProvider(provider, s.redirectURL)
	if err != nil {
		return nil, errors.NewBackendFault(err)
	}
	return redirect, nil
}

// Callback exchanges the provider code for tokens
func (s *Service) Callback(ctx context.Context, code, verifier string) (*domain.AuthTokens, error) {
	fields := map[string]string{}
	if strings.TrimSpace(code) == "" {
		fields["code"] = "Authorization code is required"
	}
	if strings.TrimSpace(verifier) == "" {
		fields["code_verifier"] = "Code verifier is required"
	}
	if len(fields) > 0 {
		return nil, errors.NewFieldValidationError(fields)
	}

	tokens, err := s.auth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		s.logger.WithError(err).Warn("Code exchange failed")
		return nil, errors.NewAuthenticationError("Sign-in could not be completed")
	}
	return tokens, nil
}

// SignOut ends the session with the auth service
func (s *Service) SignOut(ctx context.Context, session domain.Session) error {
	if err := s.auth.SignOut(ctx, session.AccessToken); err != nil {
		s.logger.WithError(err).WithUser(session.UserID).Warn("Sign-out failed")
		return errors.NewBackendFault(err)
	}
	return nil
}

// CurrentUser returns the user behind the session, or nil when the token
// no longer has a live session
func (s *Service) CurrentUser(ctx context.Context, session domain.Session) (*domain.User, error) {
	if session.Anonymous() {
		return nil, nil
	}
	user, err := s.auth.CurrentUser(ctx, session.AccessToken)
	if err != nil {
		return nil, errors.NewBackendFault(err)
	}
	return user, nil
}

func isJWTToken(token string) bool {
	return strings.Count(token, ".") == 2
}

func getStringValue(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
