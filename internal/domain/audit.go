package domain

import "time"

// AuditAction is either a StructuredAction or a FreeTextAction
type AuditAction interface {
	auditRecord(adminID string) AuditEntry
}

// StructuredAction describes a mutation of a known entity
type StructuredAction struct {
	Action      string `json:"action"`
	TargetTable string `json:"target_table"`
	TargetID    string `json:"target_id"`
	Reason      string `json:"reason,omitempty"`
}

func (a StructuredAction) auditRecord(adminID string) AuditEntry {
	return AuditEntry{
		AdminID:     adminID,
		Kind:        AuditKindStructured,
		Action:      a.Action,
		TargetTable: a.TargetTable,
		TargetID:    a.TargetID,
		Details:     a.Reason,
	}
}

// FreeTextAction is an admin note with no structured target
type FreeTextAction struct {
	Description string `json:"description"`
}

func (a FreeTextAction) auditRecord(adminID string) AuditEntry {
	return AuditEntry{
		AdminID: adminID,
		Kind:    AuditKindFreeText,
		Action:  "note",
		Details: a.Description,
	}
}

// AuditKind tags how an entry was written
type AuditKind string

const (
	AuditKindStructured AuditKind = "structured"
	AuditKindFreeText   AuditKind = "free_text"
)

// AuditEntry is one row of the admin audit log
type AuditEntry struct {
	ID          string     `json:"id,omitempty"`
	AdminID     string     `json:"admin_id"`
	Kind        AuditKind  `json:"kind"`
	Action      string     `json:"action"`
	TargetTable string     `json:"target_table,omitempty"`
	TargetID    string     `json:"target_id,omitempty"`
	Details     string     `json:"details,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// NewAuditEntry flattens an action into a log row
func NewAuditEntry(adminID string, action AuditAction) AuditEntry {
	return action.auditRecord(adminID)
}
