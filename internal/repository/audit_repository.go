package repository

import (
	"context"
	"fmt"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

// DefaultAuditLimit caps audit listings when no limit is given
const DefaultAuditLimit = 100

type auditRepository struct {
	store gateway.Store
}

// NewAuditRepository creates an audit log repository over store
func NewAuditRepository(store gateway.Store) AuditRepository {
	return &auditRepository{store: store}
}

func (r *auditRepository) Create(ctx context.Context, entry domain.AuditEntry) error {
	rec, err := toRecord(entry, "id", "created_at")
	if err != nil {
		return err
	}
	if _, err := r.store.Insert(ctx, TableAuditLog, rec); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	rows, err := r.store.Query(ctx, TableAuditLog, gateway.Query{
		Order: []gateway.Order{gateway.Desc("created_at")},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return fromRecords[domain.AuditEntry](rows)
}
