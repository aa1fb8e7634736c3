package repository

import (
	"context"
	"fmt"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

type registrationRepository struct {
	store gateway.Store
}

// NewRegistrationRepository creates a tournament entry repository over store
func NewRegistrationRepository(store gateway.Store) RegistrationRepository {
	return &registrationRepository{store: store}
}

func (r *registrationRepository) ListByTournament(ctx context.Context, tournamentID string) ([]domain.TournamentEntry, error) {
	rows, err := r.store.Query(ctx, TableRegistrations, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("tournament_id", tournamentID)},
		Order:   []gateway.Order{gateway.Asc("created_at")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return fromRecords[domain.TournamentEntry](rows)
}

func (r *registrationRepository) Exists(ctx context.Context, tournamentID, teamID string) (bool, error) {
	rows, err := r.store.Query(ctx, TableRegistrations, gateway.Query{
		Filters: []gateway.Filter{
			gateway.Eq("tournament_id", tournamentID),
			gateway.Eq("team_id", teamID),
		},
		Limit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return len(rows) > 0, nil
}

func (r *registrationRepository) Create(ctx context.Context, entry domain.TournamentEntry) (*domain.TournamentEntry, error) {
	rec, err := toRecord(entry, "id", "created_at")
	if err != nil {
		return nil, err
	}
	row, err := r.store.Insert(ctx, TableRegistrations, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	var out domain.TournamentEntry
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *registrationRepository) DeleteByTournament(ctx context.Context, tournamentID string) error {
	if err := r.store.DeleteWhere(ctx, TableRegistrations, gateway.Eq("tournament_id", tournamentID)); err != nil {
		return fmt.Errorf("failed to delete registrations: %w", err)
	}
	return nil
}

func (r *registrationRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	if err := r.store.DeleteWhere(ctx, TableRegistrations, gateway.Eq("team_id", teamID)); err != nil {
		return fmt.Errorf("failed to delete registrations: %w", err)
	}
	return nil
}
