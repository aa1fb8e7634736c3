package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/rules"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	// MaxLogoBytes caps team logo uploads
	MaxLogoBytes = 2 << 20

	captainNameUnavailable = "Unavailable"
	submitScopeTeam        = "team"
)

// TeamService handles team registration, rosters and logos
type TeamService struct {
	teams         repository.TeamRepository
	profiles      repository.ProfileRepository
	matches       repository.MatchRepository
	registrations repository.RegistrationRepository
	files         gateway.FileStore
	access        *AccessService
	audit         *AuditService
	guard         *SubmissionGuard
	cache         *CacheService
	bucket        string
	logger        *logger.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	repos *repository.Repositories,
	files gateway.FileStore,
	access *AccessService,
	audit *AuditService,
	guard *SubmissionGuard,
	cache *CacheService,
	opts Options,
	logger *logger.Logger,
) *TeamService {
	return &TeamService{
		teams:         repos.Team,
		profiles:      repos.Profile,
		matches:       repos.Match,
		registrations: repos.Registration,
		files:         files,
		access:        access,
		audit:         audit,
		guard:         guard,
		cache:         cache,
		bucket:        opts.StorageBucket,
		logger:        logger,
	}
}

// List returns every team ordered by name
func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, backendFault(s.logger, "list teams", err)
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

// Get returns a team with its roster and the captain's display name
func (s *TeamService) Get(ctx context.Context, id string) (*domain.TeamDetails, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get team", err)
	}
	if team == nil {
		return nil, errors.NewNotFoundError("Team not found")
	}

	members, err := s.teams.Members(ctx, id)
	if err != nil {
		return nil, backendFault(s.logger, "list team members", err)
	}
	if members == nil {
		members = []domain.TeamMember{}
	}

	return &domain.TeamDetails{
		Team:        *team,
		Members:     members,
		CaptainName: s.captainName(ctx, *team, members),
	}, nil
}

// captainName prefers the roster entry and falls back to the captain's
// profile. Lookup failures degrade to "Unavailable".
func (s *TeamService) captainName(ctx context.Context, team domain.Team, members []domain.TeamMember) string {
	for _, m := range members {
		if m.IsCaptain && strings.TrimSpace(m.FullName()) != "" {
			return m.FullName()
		}
	}

	key := s.cache.Keys().KeyCaptainName(team.ID)
	var name string
	if s.cache.GetJSON(ctx, key, &name) {
		return name
	}

	profile, err := s.profiles.GetByUserID(ctx, team.CaptainID)
	if err != nil {
		s.logger.WithError(err).WithField("team_id", team.ID).Warn("Captain lookup failed")
		return captainNameUnavailable
	}
	if profile == nil {
		return captainNameUnavailable
	}
	name = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	if name == "" {
		return captainNameUnavailable
	}
	_ = s.cache.SetJSON(ctx, key, name, redis.TTLCaptainName)
	return name
}

// CheckAddition gives incremental feedback while a captain builds a roster.
// current excludes the captain, who is taken from the caller's profile.
func (s *TeamService) CheckAddition(ctx context.Context, session domain.Session, current []domain.TeamMember, candidate domain.TeamMember) (*rules.RosterReason, error) {
	profile, err := s.completeProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	roster := rules.NewRoster(rules.CaptainFromProfile(*profile))
	for _, m := range current {
		if why := roster.Add(m); why != nil {
			return why, nil
		}
	}
	return rules.ValidateAddition(roster.Members(), candidate), nil
}

func (s *TeamService) completeProfile(ctx context.Context, session domain.Session) (*domain.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(asUser(ctx, session), session.UserID)
	if err != nil {
		return nil, backendFault(s.logger, "get profile", err)
	}
	if status := profileStatus(profile); !status.Complete {
		return nil, errors.NewValidationError("Complete your profile before registering a team",
			map[string]interface{}{"profile": status.Missing})
	}
	return profile, nil
}

// Register creates the caller's team. The captain is always the caller,
// built from their profile, and is stored first.
func (s *TeamService) Register(ctx context.Context, session domain.Session, reg domain.TeamRegistration) (*domain.TeamDetails, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	release, err := s.guard.Acquire(ctx, submitScopeTeam, session.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, err := s.completeProfile(ctx, session)
	if err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	existing, err := s.teams.GetByCaptain(userCtx, session.UserID)
	if err != nil {
		return nil, backendFault(s.logger, "get team by captain", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("You have already registered a team")
	}

	members := make([]domain.TeamMember, 0, len(reg.Members)+1)
	members = append(members, rules.CaptainFromProfile(*profile))
	for _, m := range reg.Members {
		m.IsCaptain = false
		m.UserID = ""
		members = append(members, m)
	}
	name := strings.TrimSpace(reg.Name)
	if reasons := rules.ValidateFinalRoster(name, members); len(reasons) > 0 {
		s.logger.WithField("reasons", len(reasons)).Debug("Roster rejected")
		return nil, rosterError(reasons...)
	}

	team, err := s.teams.Create(userCtx, domain.Team{Name: name, CaptainID: session.UserID})
	if err != nil {
		return nil, backendFault(s.logger, "create team", err)
	}

	stored, err := s.teams.AddMembers(userCtx, team.ID, members)
	if err != nil {
		if delErr := s.teams.Delete(userCtx, team.ID); delErr != nil {
			s.logger.WithError(delErr).WithField("team_id", team.ID).Warn("Failed to roll back team after member insert failure")
		}
		return nil, backendFault(s.logger, "add team members", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"team_id":    team.ID,
		"captain_id": session.UserID,
	}).Info("Team registered")

	return &domain.TeamDetails{
		Team:        *team,
		Members:     stored,
		CaptainName: rules.CaptainFromProfile(*profile).FullName(),
	}, nil
}

// LogoUpload is an uploaded image
type LogoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadLogo stores a team logo. Only the captain or an admin may upload.
func (s *TeamService) UploadLogo(ctx context.Context, session domain.Session, teamID string, upload LogoUpload) (*domain.Team, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	team, err := s.teams.GetByID(userCtx, teamID)
	if err != nil {
		return nil, backendFault(s.logger, "get team", err)
	}
	if team == nil {
		return nil, errors.NewNotFoundError("Team not found")
	}
	if team.CaptainID != session.UserID {
		if err := s.access.RequireAdmin(ctx, session); err != nil {
			return nil, err
		}
	}

	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	errs := rules.FieldErrors{}
	switch {
	case len(upload.Data) == 0:
		errs.Add("logo", "Logo file is required")
	case !strings.HasPrefix(contentType, "image/"):
		errs.Add("logo", "Logo must be an image")
	case len(upload.Data) > MaxLogoBytes:
		errs.Add("logo", fmt.Sprintf("Logo must be at most %d MB", MaxLogoBytes>>20))
	}
	if !errs.OK() {
		return nil, validationError(errs)
	}

	path := fmt.Sprintf("logos/%s-%s%s", slug.Make(team.Name), uuid.NewString(), logoExtension(upload.Filename, contentType))
	url, err := s.files.UploadFile(userCtx, s.bucket, path, contentType, upload.Data)
	if err != nil {
		return nil, backendFault(s.logger, "upload logo", err)
	}

	updated, err := s.teams.UpdateLogo(userCtx, team.ID, url)
	if err != nil {
		return nil, backendFault(s.logger, "update team logo", err)
	}
	if updated == nil {
		return nil, errors.NewNotFoundError("Team not found")
	}
	return updated, nil
}

func logoExtension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Delete removes a team and its roster. Teams that still appear in matches
// are refused.
func (s *TeamService) Delete(ctx context.Context, session domain.Session, id string) error {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return err
	}
	userCtx := asUser(ctx, session)

	team, err := s.teams.GetByID(userCtx, id)
	if err != nil {
		return backendFault(s.logger, "get team", err)
	}
	if team == nil {
		return errors.NewNotFoundError("Team not found")
	}

	count, err := s.matches.CountByTeam(userCtx, id)
	if err != nil {
		return backendFault(s.logger, "count team matches", err)
	}
	if count > 0 {
		return errors.NewConflictError("This team has scheduled matches; delete them first")
	}

	if err := s.teams.DeleteMembers(userCtx, id); err != nil {
		return backendFault(s.logger, "delete team members", err)
	}
	if err := s.registrations.DeleteByTeam(userCtx, id); err != nil {
		return backendFault(s.logger, "delete team entries", err)
	}
	if err := s.teams.Delete(userCtx, id); err != nil {
		return backendFault(s.logger, "delete team", err)
	}
	s.cache.Invalidate(ctx, s.cache.Keys().KeyCaptainName(id))

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "delete",
		TargetTable: repository.TableTeams,
		TargetID:    id,
		Reason:      team.Name,
	})
	return nil
}
