package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

type tournamentRepository struct {
	store gateway.Store
}

// NewTournamentRepository creates a tournament repository over store
func NewTournamentRepository(store gateway.Store) TournamentRepository {
	return &tournamentRepository{store: store}
}

func (r *tournamentRepository) List(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := r.store.Query(ctx, TableTournaments, gateway.Query{
		Order: []gateway.Order{gateway.Asc("start_date")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return fromRecords[domain.Tournament](rows)
}

func (r *tournamentRepository) ListNotStarted(ctx context.Context, now time.Time) ([]domain.Tournament, error) {
	rows, err := r.store.Query(ctx, TableTournaments, gateway.Query{
		Filters: []gateway.Filter{
			gateway.In("status",
				string(domain.TournamentUpcoming),
				string(domain.TournamentRegistrationOpen),
				string(domain.TournamentRegistrationClosed),
			),
			gateway.Gte("start_date", now),
		},
		Order: []gateway.Order{gateway.Asc("start_date")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}
	return fromRecords[domain.Tournament](rows)
}

func (r *tournamentRepository) GetByID(ctx context.Context, id string) (*domain.Tournament, error) {
	rows, err := r.store.Query(ctx, TableTournaments, byID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return firstOrNil[domain.Tournament](rows)
}

func (r *tournamentRepository) Create(ctx context.Context, t domain.Tournament) (*domain.Tournament, error) {
	rec, err := toRecord(t, "id", "created_at")
	if err != nil {
		return nil, err
	}
	row, err := r.store.Insert(ctx, TableTournaments, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	var out domain.Tournament
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *tournamentRepository) Update(ctx context.Context, t domain.Tournament) (*domain.Tournament, error) {
	rec, err := toRecord(t, "id", "created_at", "created_by")
	if err != nil {
		return nil, err
	}
	if t.ManOfTournament == nil {
		rec["man_of_tournament"] = nil
	}
	row, err := r.store.Update(ctx, TableTournaments, t.ID, rec)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	var out domain.Tournament
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *tournamentRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, TableTournaments, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return nil
}
