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

func validTournamentInput() rules.TournamentInput {
	start := testNow.Add(10 * 24 * time.Hour)
	return rules.TournamentInput{
		Name:                 "Summer Cup",
		Description:          "Annual inter-batch tournament",
		StartDate:            start,
		EndDate:              start.Add(48 * time.Hour),
		RegistrationDeadline: start.Add(-24 * time.Hour),
		MaxTeams:             8,
	}
}

func TestTournamentService_CreateAndGet(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	created, err := h.tournaments.Create(ctx, adminSession, validTournamentInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.TournamentUpcoming, created.Status)
	assert.Equal(t, adminSession.UserID, created.CreatedBy)

	got, err := h.tournaments.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Cup", got.Name)

	list, err := h.tournaments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	audit := h.store.Rows("admin_audit_log")
	require.Len(t, audit, 1)
	assert.Equal(t, "create", audit[0]["action"])

	_, err = h.tournaments.Get(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestTournamentService_CreateValidation(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	in := validTournamentInput()
	in.Name = "ab"
	in.StartDate = testNow.Add(-time.Hour)
	in.MaxTeams = 1

	_, err := h.tournaments.Create(ctx, adminSession, in)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "start_date")
	assert.Contains(t, appErr.Details, "max_teams")
	assert.Empty(t, h.store.Rows("tournaments"))

	_, err = h.tournaments.Create(ctx, captainSession, validTournamentInput())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthorization))
}

func TestTournamentService_UpdateAllowsPastDates(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	start := testNow.Add(-24 * time.Hour)
	h.seedTournament("t1", domain.TournamentOngoing, start, 8)

	in := validTournamentInput()
	in.StartDate = start
	in.EndDate = start.Add(72 * time.Hour)
	in.RegistrationDeadline = start.Add(-48 * time.Hour)
	in.Status = domain.TournamentUpcoming

	updated, err := h.tournaments.Update(ctx, adminSession, "t1", in)
	require.NoError(t, err)
	assert.Equal(t, "t1", updated.ID)
	assert.Equal(t, domain.TournamentUpcoming, updated.Status)

	_, err = h.tournaments.Update(ctx, adminSession, "missing", in)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestTournamentService_UpdateEnforcesTransitions(t *testing.T) {
	h := newHarness(t, Options{EnforceStatusTransitions: true})
	ctx := context.Background()
	start := testNow.Add(5 * 24 * time.Hour)
	h.seedTournament("t1", domain.TournamentOngoing, start, 8)

	in := validTournamentInput()
	in.StartDate = start
	in.EndDate = start.Add(72 * time.Hour)
	in.RegistrationDeadline = start.Add(-48 * time.Hour)
	in.Status = domain.TournamentUpcoming

	_, err := h.tournaments.Update(ctx, adminSession, "t1", in)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "status")

	in.Status = domain.TournamentCompleted
	_, err = h.tournaments.Update(ctx, adminSession, "t1", in)
	assert.NoError(t, err)
}

func TestTournamentService_DeleteCascades(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.seedTournament("t1", domain.TournamentUpcoming, testNow.Add(240*time.Hour), 8)
	h.store.Seed("matches", gateway.Record{"tournament_id": "t1", "team1_id": "a", "team2_id": "b"})
	h.store.Seed("tournament_registrations", gateway.Record{"tournament_id": "t1", "team_id": "a"})

	require.NoError(t, h.tournaments.Delete(ctx, adminSession, "t1"))
	assert.Empty(t, h.store.Rows("tournaments"))
	assert.Empty(t, h.store.Rows("matches"))
	assert.Empty(t, h.store.Rows("tournament_registrations"))

	err := h.tournaments.Delete(ctx, adminSession, "t1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestTournamentService_EnterTeam(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.seedTournament("open", domain.TournamentRegistrationOpen, testNow.Add(240*time.Hour), 2)
	h.seedTournament("closed", domain.TournamentRegistrationClosed, testNow.Add(240*time.Hour), 2)

	_, err := h.tournaments.EnterTeam(ctx, captainSession, "open")
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "team_id")

	h.seedTeam("lions", "Lions", captainSession.UserID)

	entry, err := h.tournaments.EnterTeam(ctx, captainSession, "open")
	require.NoError(t, err)
	assert.Equal(t, "lions", entry.TeamID)

	_, err = h.tournaments.EnterTeam(ctx, captainSession, "open")
	appErr = apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "team_id")

	_, err = h.tournaments.EnterTeam(ctx, captainSession, "closed")
	appErr = apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "tournament_id")

	entries, err := h.tournaments.ListEntries(ctx, "open")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = h.tournaments.EnterTeam(ctx, domain.Session{}, "open")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthentication))
}

func TestTournamentService_EnterTeamFull(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.seedTournament("open", domain.TournamentRegistrationOpen, testNow.Add(240*time.Hour), 2)
	h.store.Seed("tournament_registrations",
		gateway.Record{"tournament_id": "open", "team_id": "a"},
		gateway.Record{"tournament_id": "open", "team_id": "b"},
	)
	h.seedTeam("lions", "Lions", captainSession.UserID)

	_, err := h.tournaments.EnterTeam(ctx, captainSession, "open")
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "This tournament is full", appErr.Details["tournament_id"])
}
