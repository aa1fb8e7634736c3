package service

import (
	"fmt"
	"testing"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/gateway/gatewaytest"
	"cricket-hub/internal/repository"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	adminSession   = domain.Session{UserID: "admin-1", AccessToken: "tok-admin"}
	captainSession = domain.Session{UserID: "captain-1", AccessToken: "tok-captain"}
)

type harness struct {
	gw    *gateway.Gateway
	store *gatewaytest.MemoryStore
	files *gatewaytest.MemoryFiles
	mr    *miniredis.Miniredis
	repos *repository.Repositories

	cache       *CacheService
	access      *AccessService
	audit       *AuditService
	guard       *SubmissionGuard
	profiles    *ProfileService
	teams       *TeamService
	upcoming    *UpcomingService
	tournaments *TournamentService
	matches     *MatchService
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	gw, store, _, files := gatewaytest.NewGateway()
	mr := miniredis.RunT(t)
	rc, err := redis.NewClient("redis://"+mr.Addr(), "test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	log := logger.NewNop()
	if opts.StorageBucket == "" {
		opts.StorageBucket = "team-logos"
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "IN"
	}
	clock := func() time.Time { return testNow }

	h := &harness{gw: gw, store: store, files: files, mr: mr}
	h.repos = repository.NewRepositories(store)
	h.cache = NewCacheService(rc, "test", log.Logger)
	h.access = NewAccessService(gw, h.cache, log)
	h.audit = NewAuditService(h.repos.Audit, log)
	h.guard = NewSubmissionGuard(rc, "test", log)
	h.profiles = NewProfileService(h.repos.Profile, opts, log)
	h.teams = NewTeamService(h.repos, gw, h.access, h.audit, h.guard, h.cache, opts, log)
	h.upcoming = NewUpcomingService(h.repos.Tournament, h.cache, time.Minute, opts, log)
	h.upcoming.now = clock
	h.tournaments = NewTournamentService(h.repos, h.access, h.audit, h.guard, h.upcoming, opts, log)
	h.tournaments.now = clock
	h.matches = NewMatchService(h.repos, h.access, h.audit, opts, log)
	h.matches.now = clock

	store.Seed(gateway.TableUserRoles, gateway.Record{"user_id": adminSession.UserID, "role": "admin"})
	return h
}

func (h *harness) seedProfile(userID string, gender domain.Gender) {
	h.store.Seed(repository.TableProfiles, gateway.Record{
		"id":         userID,
		"first_name": "Asha",
		"last_name":  "Rao",
		"gender":     string(gender),
		"batch":      "2022",
	})
}

func (h *harness) seedTeam(id, name, captainID string) {
	h.store.Seed(repository.TableTeams, gateway.Record{"id": id, "name": name, "captain_id": captainID})
}

func (h *harness) seedTournament(id string, status domain.TournamentStatus, start time.Time, maxTeams int) {
	h.store.Seed(repository.TableTournaments, gateway.Record{
		"id":                    id,
		"name":                  "Tournament " + id,
		"start_date":            start,
		"end_date":              start.Add(72 * time.Hour),
		"registration_deadline": start.Add(-48 * time.Hour),
		"max_teams":             maxTeams,
		"status":                string(status),
	})
}

// teammates returns the nine non-captain members of a valid roster when
// the captain is male
func teammates() []domain.TeamMember {
	var out []domain.TeamMember
	for i := 0; i < 6; i++ {
		out = append(out, domain.TeamMember{FirstName: fmt.Sprintf("M%d", i), LastName: "Player", Gender: domain.GenderMale, Batch: "2023"})
	}
	for i := 0; i < 3; i++ {
		out = append(out, domain.TeamMember{FirstName: fmt.Sprintf("F%d", i), LastName: "Player", Gender: domain.GenderFemale, Batch: "2023"})
	}
	return out
}

func newNopLogger() *logger.Logger {
	return logger.NewNop()
}
