package repository

import (
	"context"
	"errors"
	"fmt"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

type matchRepository struct {
	store gateway.Store
}

// NewMatchRepository creates a match repository over store
func NewMatchRepository(store gateway.Store) MatchRepository {
	return &matchRepository{store: store}
}

func (r *matchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]domain.Match, error) {
	rows, err := r.store.Query(ctx, TableMatches, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("tournament_id", tournamentID)},
		Order:   []gateway.Order{gateway.Asc("scheduled_at")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return fromRecords[domain.Match](rows)
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	rows, err := r.store.Query(ctx, TableMatches, byID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return firstOrNil[domain.Match](rows)
}

func (r *matchRepository) Create(ctx context.Context, m domain.Match) (*domain.Match, error) {
	rec, err := toRecord(m, "id", "created_at")
	if err != nil {
		return nil, err
	}
	row, err := r.store.Insert(ctx, TableMatches, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	var out domain.Match
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *matchRepository) Update(ctx context.Context, id string, patch gateway.Record) (*domain.Match, error) {
	row, err := r.store.Update(ctx, TableMatches, id, patch)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	var out domain.Match
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *matchRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, TableMatches, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

func (r *matchRepository) DeleteByTournament(ctx context.Context, tournamentID string) error {
	if err := r.store.DeleteWhere(ctx, TableMatches, gateway.Eq("tournament_id", tournamentID)); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}

func (r *matchRepository) CountByTeam(ctx context.Context, teamID string) (int, error) {
	total := 0
	for _, col := range []string{"team1_id", "team2_id"} {
		rows, err := r.store.Query(ctx, TableMatches, gateway.Query{
			Filters: []gateway.Filter{gateway.Eq(col, teamID)},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to count matches: %w", err)
		}
		total += len(rows)
	}
	return total, nil
}
