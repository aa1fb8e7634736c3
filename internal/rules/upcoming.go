package rules

import (
	"sort"
	"time"

	"cricket-hub/internal/domain"
)

// SelectNearestUpcoming returns the not-yet-started tournament with the
// earliest start, or nil. Ties keep input order.
func SelectNearestUpcoming(all []domain.Tournament, now time.Time) *domain.Tournament {
	candidates := make([]domain.Tournament, 0, len(all))
	for _, t := range all {
		if t.Status.NotStarted() && !t.StartDate.Before(now) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StartDate.Before(candidates[j].StartDate)
	})
	nearest := candidates[0]
	return &nearest
}

// CountdownTarget is always the start instant
func CountdownTarget(t domain.Tournament) time.Time {
	return t.StartDate
}

// Project builds the display model for the nearest upcoming tournament
func Project(all []domain.Tournament, now time.Time) domain.UpcomingProjection {
	p := domain.UpcomingProjection{ComputedAt: now}
	if t := SelectNearestUpcoming(all, now); t != nil {
		target := CountdownTarget(*t)
		p.Tournament = t
		p.CountdownTarget = &target
	}
	return p
}
