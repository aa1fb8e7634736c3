package service

import (
	"context"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/repository"
	"cricket-hub/pkg/logger"
)

// AuditService writes and reads the admin audit log
type AuditService struct {
	repo   repository.AuditRepository
	logger *logger.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditRepository, logger *logger.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Log records an admin action. Failures never fail the caller's operation.
func (s *AuditService) Log(ctx context.Context, session domain.Session, action domain.AuditAction) {
	entry := domain.NewAuditEntry(session.UserID, action)
	if err := s.repo.Create(asUser(ctx, session), entry); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"admin_id": session.UserID,
			"action":   entry.Action,
		}).Warn("Failed to write audit entry")
	}
}

// List returns the newest entries first
func (s *AuditService) List(ctx context.Context, session domain.Session, limit int) ([]domain.AuditEntry, error) {
	entries, err := s.repo.List(asUser(ctx, session), limit)
	if err != nil {
		return nil, backendFault(s.logger, "list audit log", err)
	}
	return entries, nil
}
