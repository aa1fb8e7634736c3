package repository

import (
	"context"
	"errors"
	"fmt"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

type teamRepository struct {
	store gateway.Store
}

// NewTeamRepository creates a team repository over store
func NewTeamRepository(store gateway.Store) TeamRepository {
	return &teamRepository{store: store}
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.store.Query(ctx, TableTeams, gateway.Query{
		Order: []gateway.Order{gateway.Asc("name")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return fromRecords[domain.Team](rows)
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	rows, err := r.store.Query(ctx, TableTeams, byID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return firstOrNil[domain.Team](rows)
}

func (r *teamRepository) GetByCaptain(ctx context.Context, captainID string) (*domain.Team, error) {
	rows, err := r.store.Query(ctx, TableTeams, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("captain_id", captainID)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get team by captain: %w", err)
	}
	return firstOrNil[domain.Team](rows)
}

func (r *teamRepository) Create(ctx context.Context, t domain.Team) (*domain.Team, error) {
	rec, err := toRecord(t, "id", "created_at")
	if err != nil {
		return nil, err
	}
	row, err := r.store.Insert(ctx, TableTeams, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	var out domain.Team
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) UpdateLogo(ctx context.Context, id, logoURL string) (*domain.Team, error) {
	row, err := r.store.Update(ctx, TableTeams, id, gateway.Record{"logo_url": logoURL})
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update team logo: %w", err)
	}
	var out domain.Team
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, TableTeams, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (r *teamRepository) Members(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	rows, err := r.store.Query(ctx, TableTeamMembers, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("team_id", teamID)},
		Order:   []gateway.Order{gateway.Desc("is_captain"), gateway.Asc("created_at")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return fromRecords[domain.TeamMember](rows)
}

func (r *teamRepository) AddMembers(ctx context.Context, teamID string, members []domain.TeamMember) ([]domain.TeamMember, error) {
	recs := make([]gateway.Record, 0, len(members))
	for _, m := range members {
		m.TeamID = teamID
		rec, err := toRecord(m, "id")
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	rows, err := r.store.InsertMany(ctx, TableTeamMembers, recs)
	if err != nil {
		return nil, fmt.Errorf("failed to add team members: %w", err)
	}
	return fromRecords[domain.TeamMember](rows)
}

func (r *teamRepository) DeleteMembers(ctx context.Context, teamID string) error {
	if err := r.store.DeleteWhere(ctx, TableTeamMembers, gateway.Eq("team_id", teamID)); err != nil {
		return fmt.Errorf("failed to delete team members: %w", err)
	}
	return nil
}
