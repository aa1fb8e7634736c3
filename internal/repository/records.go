package repository

import (
	"encoding/json"
	"fmt"

	"cricket-hub/internal/gateway"
)

// Table names
const (
	TableTournaments   = "tournaments"
	TableRegistrations = "tournament_registrations"
	TableMatches       = "matches"
	TableTeams         = "teams"
	TableTeamMembers   = "team_members"
	TableProfiles      = "profiles"
	TableAuditLog      = "admin_audit_log"
)

// toRecord converts a domain struct into a record using its JSON tags.
// Columns listed in drop are removed.
func toRecord(v interface{}, drop ...string) (gateway.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var rec gateway.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	for _, col := range drop {
		delete(rec, col)
	}
	return rec, nil
}

// fromRecord decodes a record into out
func fromRecord(rec gateway.Record, out interface{}) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// fromRecords decodes a slice of records into a slice of T
func fromRecords[T any](recs []gateway.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := fromRecord(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// firstOrNil returns the first decoded row, or nil when rows is empty
func firstOrNil[T any](recs []gateway.Record) (*T, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	var v T
	if err := fromRecord(recs[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func byID(id string) gateway.Query {
	return gateway.Query{Filters: []gateway.Filter{gateway.Eq("id", id)}, Limit: 1}
}
