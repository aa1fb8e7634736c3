package service

import (
	"context"
	"testing"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/rules"
	apperrors "cricket-hub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFixtures(h *harness) {
	h.seedTournament("cup", domain.TournamentOngoing, testNow.Add(24*time.Hour), 8)
	h.seedTeam("lions", "Lions", "c1")
	h.seedTeam("tigers", "Tigers", "c2")
}

func TestMatchService_Create(t *testing.T) {
	h := newHarness(t, Options{})
	seedFixtures(h)
	ctx := context.Background()

	m, err := h.matches.Create(ctx, adminSession, rules.MatchInput{
		TournamentID:  "cup",
		Team1ID:       "lions",
		Team2ID:       "tigers",
		ScheduledDate: "2025-08-03",
		ScheduledTime: "14:30",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchScheduled, m.Status)
	assert.True(t, m.ScheduledAt.Equal(time.Date(2025, 8, 3, 14, 30, 0, 0, time.UTC)))

	list, err := h.matches.ListByTournament(ctx, "cup")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = h.matches.ListByTournament(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestMatchService_CreateValidation(t *testing.T) {
	h := newHarness(t, Options{})
	seedFixtures(h)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    rules.MatchInput
		field string
	}{
		{
			name:  "same team",
			in:    rules.MatchInput{TournamentID: "cup", Team1ID: "lions", Team2ID: "lions", ScheduledDate: "2025-08-03", ScheduledTime: "10:00"},
			field: "team2_id",
		},
		{
			name:  "in the past",
			in:    rules.MatchInput{TournamentID: "cup", Team1ID: "lions", Team2ID: "tigers", ScheduledDate: "2025-07-01", ScheduledTime: "10:00"},
			field: "scheduled_at",
		},
		{
			name:  "unknown tournament",
			in:    rules.MatchInput{TournamentID: "nope", Team1ID: "lions", Team2ID: "tigers", ScheduledDate: "2025-08-03", ScheduledTime: "10:00"},
			field: "tournament_id",
		},
		{
			name:  "unknown team",
			in:    rules.MatchInput{TournamentID: "cup", Team1ID: "lions", Team2ID: "eagles", ScheduledDate: "2025-08-03", ScheduledTime: "10:00"},
			field: "team2_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.matches.Create(ctx, adminSession, tt.in)
			appErr := apperrors.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
	assert.Empty(t, h.store.Rows("matches"))
}

func TestMatchService_UpdateAndResult(t *testing.T) {
	h := newHarness(t, Options{})
	seedFixtures(h)
	ctx := context.Background()
	h.store.Seed("matches", gateway.Record{
		"id": "m1", "tournament_id": "cup", "team1_id": "lions", "team2_id": "tigers",
		"scheduled_at": testNow.Add(time.Hour), "status": "scheduled",
	})

	// Past schedule is fine on edit
	m, err := h.matches.Update(ctx, adminSession, "m1", MatchScheduleInput{
		ScheduledDate: "2025-07-30", ScheduledTime: "09:00", Status: domain.MatchLive,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchLive, m.Status)
	assert.True(t, m.ScheduledAt.Equal(time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC)))

	_, err = h.matches.RecordResult(ctx, adminSession, "m1", rules.ResultInput{
		Team1Score: "150/6", Team2Score: "148/9", WinnerID: "eagles",
	})
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "winner_id")

	m, err = h.matches.RecordResult(ctx, adminSession, "m1", rules.ResultInput{
		Team1Score: "150/6", Team2Score: "148/9", WinnerID: "lions",
		Details: map[string]interface{}{"player_of_match": "Asha Rao"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, m.Status)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, "lions", *m.WinnerID)
	assert.Equal(t, "Asha Rao", m.MatchDetails["player_of_match"])

	_, err = h.matches.Update(ctx, captainSession, "m1", MatchScheduleInput{ScheduledDate: "2025-08-03", ScheduledTime: "10:00"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthorization))
}

func TestMatchService_EnforcedTransitions(t *testing.T) {
	h := newHarness(t, Options{EnforceStatusTransitions: true})
	seedFixtures(h)
	ctx := context.Background()
	h.store.Seed("matches", gateway.Record{
		"id": "m1", "tournament_id": "cup", "team1_id": "lions", "team2_id": "tigers",
		"scheduled_at": testNow.Add(time.Hour), "status": "completed",
	})

	_, err := h.matches.Update(ctx, adminSession, "m1", MatchScheduleInput{
		ScheduledDate: "2025-08-03", ScheduledTime: "10:00", Status: domain.MatchScheduled,
	})
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "status")
}

func TestMatchService_Delete(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.store.Seed("matches", gateway.Record{"id": "m1", "tournament_id": "cup"})

	require.NoError(t, h.matches.Delete(ctx, adminSession, "m1"))
	err := h.matches.Delete(ctx, adminSession, "m1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = h.matches.Get(ctx, "m1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
