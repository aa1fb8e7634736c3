package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/gateway/gatewaytest"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/service"
	"cricket-hub/internal/service/auth"
	apperrors "cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator map[string]domain.Session

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	session, ok := s[token]
	if !ok {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}
	return &session, nil
}

type testServer struct {
	router http.Handler
	store  *gatewaytest.MemoryStore
	auth   *gatewaytest.FakeAuth
}

func newTestServer(t *testing.T, checks map[string]HealthChecker) *testServer {
	t.Helper()
	log := logger.NewNop()
	gw, store, fakeAuth, _ := gatewaytest.NewGateway()
	store.Seed(gateway.TableUserRoles, gateway.Record{"user_id": "admin-1", "role": "admin"})

	opts := service.Options{StorageBucket: "team-logos", PhoneRegion: "IN", Location: time.UTC}
	repos := repository.NewRepositories(store)
	cache := service.NewCacheService(nil, "test", log.Logger)
	access := service.NewAccessService(gw, cache, log)
	audit := service.NewAuditService(repos.Audit, log)
	guard := service.NewSubmissionGuard(nil, "test", log)
	profiles := service.NewProfileService(repos.Profile, opts, log)
	teams := service.NewTeamService(repos, gw, access, audit, guard, cache, opts, log)
	upcoming := service.NewUpcomingService(repos.Tournament, cache, time.Minute, opts, log)
	tournaments := service.NewTournamentService(repos, access, audit, guard, upcoming, opts, log)
	matches := service.NewMatchService(repos, access, audit, opts, log)
	authService := auth.NewService(fakeAuth, "", "http://localhost:5173/auth/callback", log)

	h := &Handlers{
		Health:     NewHealthHandler(checks, log),
		Auth:       NewAuthHandler(authService, access, profiles, log),
		Profile:    NewProfileHandler(profiles, log),
		Tournament: NewTournamentHandler(tournaments, matches, upcoming, log),
		Match:      NewMatchHandler(matches, log),
		Team:       NewTeamHandler(teams, log),
		Admin:      NewAdminHandler(audit, log),
	}
	router := NewRouter(h, RouterConfig{
		Authenticator: stubAuthenticator{
			"admin":   {UserID: "admin-1", Email: "admin@example.com", AccessToken: "admin"},
			"captain": {UserID: "captain-1", Email: "cap@example.com", AccessToken: "captain"},
		},
		Access: access,
		Logger: log,
	})
	return &testServer{router: router, store: store, auth: fakeAuth}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Type    apperrors.ErrorType    `json:"type"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decodeData(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func futureTournament(name string) map[string]interface{} {
	start := time.Date(2099, 3, 10, 9, 0, 0, 0, time.UTC)
	return map[string]interface{}{
		"name":                  name,
		"description":           "Annual cup",
		"start_date":            start,
		"end_date":              start.Add(48 * time.Hour),
		"registration_deadline": start.Add(-72 * time.Hour),
		"max_teams":             8,
		"status":                "registration_open",
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, map[string]HealthChecker{
		"redis": HealthCheckFunc(func(context.Context) error { return nil }),
	})
	code, resp := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var health HealthResponse
	decodeData(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["redis"])

	srv = newTestServer(t, map[string]HealthChecker{
		"database": HealthCheckFunc(func(context.Context) error { return errors.New("down") }),
		"skipped":  nil,
	})
	code, resp = srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	decodeData(t, resp, &health)
	assert.Equal(t, "degraded", health.Status)
	assert.NotContains(t, health.Checks, "skipped")
}

func TestTournamentRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	code, resp := srv.do(t, http.MethodGet, "/api/tournaments", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))

	code, resp = srv.do(t, http.MethodPost, "/api/tournaments", "", futureTournament("Summer Cup"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, resp.Error.Type)

	code, resp = srv.do(t, http.MethodPost, "/api/tournaments", "captain", futureTournament("Summer Cup"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.ErrorTypeAuthorization, resp.Error.Type)

	code, resp = srv.do(t, http.MethodPost, "/api/tournaments", "admin", futureTournament("ab"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Details, "name")

	code, resp = srv.do(t, http.MethodPost, "/api/tournaments", "admin", futureTournament("Summer Cup"))
	require.Equal(t, http.StatusCreated, code)
	var created domain.Tournament
	decodeData(t, resp, &created)
	assert.Equal(t, "Summer Cup", created.Name)

	code, resp = srv.do(t, http.MethodGet, "/api/tournaments/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)

	// Create refreshes the projection in the background
	assert.Eventually(t, func() bool {
		code, resp := srv.do(t, http.MethodGet, "/api/tournaments/upcoming", "", nil)
		if code != http.StatusOK {
			return false
		}
		var upcoming domain.UpcomingProjection
		decodeData(t, resp, &upcoming)
		return upcoming.Tournament != nil && upcoming.Tournament.ID == created.ID
	}, 2*time.Second, 20*time.Millisecond)

	code, _ = srv.do(t, http.MethodGet, "/api/tournaments/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = srv.do(t, http.MethodGet, "/api/tournaments/"+created.ID+"/matches", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))

	code, _ = srv.do(t, http.MethodDelete, "/api/tournaments/"+created.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestTeamRegistrationFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	code, resp := srv.do(t, http.MethodGet, "/api/profile/status", "captain", nil)
	require.Equal(t, http.StatusOK, code)
	var status domain.ProfileStatus
	decodeData(t, resp, &status)
	assert.False(t, status.Complete)

	code, _ = srv.do(t, http.MethodPut, "/api/profile", "captain", map[string]string{
		"first_name": "Asha", "last_name": "Rao", "gender": "male", "batch": "2022",
	})
	require.Equal(t, http.StatusOK, code)

	code, resp = srv.do(t, http.MethodPost, "/api/teams/roster/check", "captain", map[string]interface{}{
		"members":   []interface{}{},
		"candidate": map[string]string{"first_name": "B", "last_name": "C", "gender": "female", "batch": "2023"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"allowed":true}`, string(resp.Data))

	members := make([]map[string]string, 0, 9)
	for i := 0; i < 9; i++ {
		gender := "male"
		if i >= 6 {
			gender = "female"
		}
		members = append(members, map[string]string{
			"first_name": "P" + string(rune('A'+i)), "last_name": "Player", "gender": gender, "batch": "2023",
		})
	}
	code, resp = srv.do(t, http.MethodPost, "/api/teams", "captain", map[string]interface{}{
		"name": "Lions", "members": members,
	})
	require.Equal(t, http.StatusCreated, code, resp.Error.Message)
	var team domain.TeamDetails
	decodeData(t, resp, &team)
	assert.Len(t, team.Members, 10)

	code, resp = srv.do(t, http.MethodGet, "/api/teams/"+team.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	decodeData(t, resp, &team)
	assert.Equal(t, "Asha Rao", team.CaptainName)

	code, resp = srv.do(t, http.MethodPost, "/api/teams", "captain", map[string]interface{}{"name": "Again", "members": members})
	assert.Equal(t, http.StatusConflict, code)

	// Logo upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="logo"; filename="lions.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/teams/"+team.ID+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer captain")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code, _ = srv.do(t, http.MethodDelete, "/api/teams/"+team.ID, "captain", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRosterRejectionDetails(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.store.Seed(repository.TableProfiles, gateway.Record{
		"id": "captain-1", "first_name": "Asha", "last_name": "Rao", "gender": "male", "batch": "2022",
	})

	code, resp := srv.do(t, http.MethodPost, "/api/teams", "captain", map[string]interface{}{"name": "", "members": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.ErrorTypeValidation, resp.Error.Type)
	assert.Contains(t, resp.Error.Details, "reasons")
}

func TestMatchRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.store.Seed(repository.TableTournaments, gateway.Record{
		"id": "cup", "name": "Cup", "status": "ongoing", "max_teams": 8,
		"start_date": "2099-01-01T00:00:00Z", "end_date": "2099-01-05T00:00:00Z", "registration_deadline": "2098-12-25T00:00:00Z",
	})
	srv.store.Seed(repository.TableTeams,
		gateway.Record{"id": "lions", "name": "Lions", "captain_id": "c1"},
		gateway.Record{"id": "tigers", "name": "Tigers", "captain_id": "c2"},
	)

	code, resp := srv.do(t, http.MethodPost, "/api/matches", "admin", map[string]string{
		"tournament_id": "cup", "team1_id": "lions", "team2_id": "tigers",
		"scheduled_date": "2099-01-02", "scheduled_time": "10:30",
	})
	require.Equal(t, http.StatusCreated, code, resp.Error.Message)
	var m domain.Match
	decodeData(t, resp, &m)

	code, resp = srv.do(t, http.MethodPost, "/api/matches/"+m.ID+"/result", "admin", map[string]string{
		"team1_score": "120/4", "team2_score": "118/9", "winner_id": "lions",
	})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, resp, &m)
	assert.Equal(t, domain.MatchCompleted, m.Status)

	code, _ = srv.do(t, http.MethodGet, "/api/matches/"+m.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = srv.do(t, http.MethodPost, "/api/matches", "captain", map[string]string{})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAuthRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.auth.Exchanged["code-1"] = &domain.AuthTokens{AccessToken: "at", RefreshToken: "rt"}

	code, resp := srv.do(t, http.MethodGet, "/api/auth/signin/Google", "", nil)
	require.Equal(t, http.StatusOK, code)
	var redirect domain.SignInRedirect
	decodeData(t, resp, &redirect)
	assert.Contains(t, redirect.URL, "provider=google")
	assert.Equal(t, "http://localhost:5173/auth/callback", srv.auth.LastRedirectTo)

	code, resp = srv.do(t, http.MethodPost, "/api/auth/callback", "", map[string]string{"code": "code-1", "code_verifier": "v"})
	require.Equal(t, http.StatusOK, code)
	var tokens domain.AuthTokens
	decodeData(t, resp, &tokens)
	assert.Equal(t, "at", tokens.AccessToken)

	code, resp = srv.do(t, http.MethodPost, "/api/auth/callback", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Details, "code")

	code, resp = srv.do(t, http.MethodGet, "/api/auth/me", "admin", nil)
	require.Equal(t, http.StatusOK, code)
	var me domain.Me
	decodeData(t, resp, &me)
	assert.True(t, me.IsAdmin)
	assert.Equal(t, "admin@example.com", me.User.Email)

	code, _ = srv.do(t, http.MethodPost, "/api/auth/signout", "captain", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"captain"}, srv.auth.SignedOut)
}

func TestAdminAuditRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	code, _ := srv.do(t, http.MethodPost, "/api/admin/audit", "admin", map[string]string{"description": " Rain delay "})
	assert.Equal(t, http.StatusCreated, code)

	code, resp := srv.do(t, http.MethodGet, "/api/admin/audit?limit=5", "admin", nil)
	require.Equal(t, http.StatusOK, code)
	var entries []domain.AuditEntry
	decodeData(t, resp, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "Rain delay", entries[0].Details)

	code, _ = srv.do(t, http.MethodGet, "/api/admin/audit?limit=x", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = srv.do(t, http.MethodGet, "/api/admin/audit", "captain", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestNotFoundRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	code, resp := srv.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperrors.ErrorTypeNotFound, resp.Error.Type)
}
