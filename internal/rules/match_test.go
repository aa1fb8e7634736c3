package rules

import (
	"testing"
	"time"

	"cricket-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMatch(t *testing.T) {
	tests := []struct {
		name  string
		in    MatchInput
		mode  Mode
		field string
	}{
		{
			name: "valid",
			in:   MatchInput{TournamentID: "t1", Team1ID: "a", Team2ID: "b", ScheduledDate: "2025-09-01", ScheduledTime: "10:00"},
		},
		{
			name:  "same teams",
			in:    MatchInput{TournamentID: "t1", Team1ID: "a", Team2ID: "a", ScheduledDate: "2025-09-01", ScheduledTime: "10:00"},
			field: "team2_id",
		},
		{
			name:  "same teams reported even when everything else is wrong",
			in:    MatchInput{Team1ID: "a", Team2ID: "a", ScheduledDate: "2020-01-01", ScheduledTime: "10:00"},
			field: "team2_id",
		},
		{
			name:  "missing tournament",
			in:    MatchInput{Team1ID: "a", Team2ID: "b", ScheduledDate: "2025-09-01", ScheduledTime: "10:00"},
			field: "tournament_id",
		},
		{
			name:  "in the past",
			in:    MatchInput{TournamentID: "t1", Team1ID: "a", Team2ID: "b", ScheduledDate: "2025-08-20", ScheduledTime: "08:59"},
			field: "scheduled_at",
		},
		{
			name: "past allowed on edit",
			in:   MatchInput{ScheduledDate: "2025-08-20", ScheduledTime: "08:59", Status: domain.MatchLive},
			mode: ModeEdit,
		},
		{
			name:  "bad time",
			in:    MatchInput{TournamentID: "t1", Team1ID: "a", Team2ID: "b", ScheduledDate: "2025-09-01", ScheduledTime: "25:00"},
			field: "scheduled_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateMatch(tt.in, now, tt.mode)
			if tt.field == "" {
				assert.True(t, errs.OK(), "unexpected errors: %v", errs)
				return
			}
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidateMatch_SameTeamsMessage(t *testing.T) {
	_, errs := ValidateMatch(MatchInput{TournamentID: "t1", Team1ID: "a", Team2ID: "a", ScheduledDate: "2025-09-01", ScheduledTime: "10:00"}, now, ModeCreate)
	assert.Equal(t, "Teams must be different", errs["team2_id"])
}

func TestCombineSchedule_UsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at, err := CombineSchedule("2025-09-01", "10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 4, 30, 0, 0, time.UTC), at.UTC())
}

func TestRecordMatchResult(t *testing.T) {
	m := domain.Match{ID: "m1", Team1ID: "a", Team2ID: "b", Status: domain.MatchLive}

	update, errs := RecordMatchResult(m, ResultInput{Team1Score: "85/8", Team2Score: "86/3", WinnerID: "b"})
	require.True(t, errs.OK())
	assert.Equal(t, domain.MatchCompleted, update.Status)
	assert.Equal(t, "b", update.WinnerID)

	_, errs = RecordMatchResult(m, ResultInput{Team1Score: "85/8", Team2Score: "86/3", WinnerID: "c"})
	assert.Contains(t, errs, "winner_id")

	_, errs = RecordMatchResult(m, ResultInput{Team1Score: " ", WinnerID: "a"})
	assert.Contains(t, errs, "team1_score")
	assert.Contains(t, errs, "team2_score")
}

func TestValidateMatchTransition(t *testing.T) {
	assert.True(t, ValidateMatchTransition(domain.MatchScheduled, domain.MatchLive).OK())
	assert.True(t, ValidateMatchTransition(domain.MatchLive, domain.MatchCancelled).OK())
	assert.Contains(t, ValidateMatchTransition(domain.MatchCompleted, domain.MatchLive), "status")
}
