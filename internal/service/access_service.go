package service

import (
	"context"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"
)

// AccessService answers role questions, caching the answer per user
type AccessService struct {
	gw     *gateway.Gateway
	cache  *CacheService
	logger *logger.Logger
}

// NewAccessService creates a new access service
func NewAccessService(gw *gateway.Gateway, cache *CacheService, logger *logger.Logger) *AccessService {
	return &AccessService{gw: gw, cache: cache, logger: logger}
}

// Role returns the caller's role, or nil when none is assigned
func (s *AccessService) Role(ctx context.Context, session domain.Session) (*string, error) {
	if session.Anonymous() {
		return nil, nil
	}

	var role string
	err := s.cache.Remember(ctx, s.cache.Keys().KeyUserRole(session.UserID), redis.TTLUserRole, &role,
		func(ctx context.Context) (interface{}, error) {
			return s.gw.CurrentUserRole(ctx, session)
		})
	if err != nil {
		return nil, backendFault(s.logger, "role lookup", err)
	}
	if role == "" {
		return nil, nil
	}
	return &role, nil
}

// IsAdmin reports whether the caller holds the admin role
func (s *AccessService) IsAdmin(ctx context.Context, session domain.Session) (bool, error) {
	role, err := s.Role(ctx, session)
	if err != nil {
		return false, err
	}
	return role != nil && *role == s.gw.AdminRole(), nil
}

// RequireAdmin fails with an authorization error unless the caller is an admin
func (s *AccessService) RequireAdmin(ctx context.Context, session domain.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ok, err := s.IsAdmin(ctx, session)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WithUser(session.UserID).Debug("Admin access denied")
		return errors.NewAuthorizationError("Admin access required")
	}
	return nil
}

// AdminRole is the role name treated as admin
func (s *AccessService) AdminRole() string {
	return s.gw.AdminRole()
}

// Forget drops the cached role of a user
func (s *AccessService) Forget(ctx context.Context, userID string) {
	s.cache.Invalidate(ctx, s.cache.Keys().KeyUserRole(userID))
}
