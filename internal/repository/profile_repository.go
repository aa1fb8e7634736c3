package repository

import (
	"context"
	"fmt"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

type profileRepository struct {
	store gateway.Store
}

// NewProfileRepository creates a profile repository over store
func NewProfileRepository(store gateway.Store) ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	rows, err := r.store.Query(ctx, TableProfiles, byID(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return firstOrNil[domain.Profile](rows)
}

func (r *profileRepository) Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	existing, err := r.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	var row gateway.Record
	if existing == nil {
		rec, err := toRecord(p, "updated_at")
		if err != nil {
			return nil, err
		}
		row, err = r.store.Insert(ctx, TableProfiles, rec)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	} else {
		rec, err := toRecord(p, "id", "updated_at")
		if err != nil {
			return nil, err
		}
		row, err = r.store.Update(ctx, TableProfiles, p.UserID, rec)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	var out domain.Profile
	if err := fromRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
