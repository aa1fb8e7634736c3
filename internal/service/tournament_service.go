package service

import (
	"context"
	"errors"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/rules"
	apperrors "cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
)

const submitScopeEntry = "tournament-entry"

// TournamentService manages tournaments and team entries
type TournamentService struct {
	tournaments   repository.TournamentRepository
	registrations repository.RegistrationRepository
	matches       repository.MatchRepository
	teams         repository.TeamRepository
	access        *AccessService
	audit         *AuditService
	guard         *SubmissionGuard
	upcoming      *UpcomingService
	enforce       bool
	now           func() time.Time
	logger        *logger.Logger
}

// NewTournamentService creates a new tournament service
func NewTournamentService(
	repos *repository.Repositories,
	access *AccessService,
	audit *AuditService,
	guard *SubmissionGuard,
	upcoming *UpcomingService,
	opts Options,
	logger *logger.Logger,
) *TournamentService {
	return &TournamentService{
		tournaments:   repos.Tournament,
		registrations: repos.Registration,
		matches:       repos.Match,
		teams:         repos.Team,
		access:        access,
		audit:         audit,
		guard:         guard,
		upcoming:      upcoming,
		enforce:       opts.EnforceStatusTransitions,
		now:           opts.clock(),
		logger:        logger,
	}
}

// List returns every tournament ordered by start date
func (s *TournamentService) List(ctx context.Context) ([]domain.Tournament, error) {
	list, err := s.tournaments.List(ctx)
	if err != nil {
		return nil, backendFault(s.logger, "list tournaments", err)
	}
	if list == nil {
		list = []domain.Tournament{}
	}
	return list, nil
}

// Get returns one tournament or a not-found error
func (s *TournamentService) Get(ctx context.Context, id string) (*domain.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get tournament", err)
	}
	if t == nil {
		return nil, apperrors.NewNotFoundError("Tournament not found")
	}
	return t, nil
}

// Create validates and stores a new tournament
func (s *TournamentService) Create(ctx context.Context, session domain.Session, in rules.TournamentInput) (*domain.Tournament, error) {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return nil, err
	}
	if errs := rules.ValidateTournament(in, s.now(), rules.ModeCreate); !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Tournament validation failed")
		return nil, validationError(errs)
	}

	t := in.ToTournament()
	t.CreatedBy = session.UserID
	created, err := s.tournaments.Create(asUser(ctx, session), t)
	if err != nil {
		return nil, backendFault(s.logger, "create tournament", err)
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "create",
		TargetTable: repository.TableTournaments,
		TargetID:    created.ID,
		Reason:      created.Name,
	})
	s.upcoming.Trigger()
	return created, nil
}

// Update replaces a tournament's editable fields. Past dates are allowed;
// status moves are checked only when transitions are enforced.
func (s *TournamentService) Update(ctx context.Context, session domain.Session, id string, in rules.TournamentInput) (*domain.Tournament, error) {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	existing, err := s.tournaments.GetByID(userCtx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get tournament", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("Tournament not found")
	}

	if in.Status == "" {
		in.Status = existing.Status
	}
	errs := rules.ValidateTournament(in, s.now(), rules.ModeEdit)
	if s.enforce {
		for field, msg := range rules.ValidateTournamentTransition(existing.Status, in.Status) {
			errs.Add(field, msg)
		}
	}
	if !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Tournament validation failed")
		return nil, validationError(errs)
	}

	t := in.ToTournament()
	t.ID = existing.ID
	t.CreatedBy = existing.CreatedBy
	updated, err := s.tournaments.Update(userCtx, t)
	if err != nil {
		return nil, backendFault(s.logger, "update tournament", err)
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("Tournament not found")
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "update",
		TargetTable: repository.TableTournaments,
		TargetID:    id,
	})
	s.upcoming.Trigger()
	return updated, nil
}

// Delete removes a tournament together with its matches and entries
func (s *TournamentService) Delete(ctx context.Context, session domain.Session, id string) error {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return err
	}
	userCtx := asUser(ctx, session)

	if err := s.matches.DeleteByTournament(userCtx, id); err != nil {
		return backendFault(s.logger, "delete tournament matches", err)
	}
	if err := s.registrations.DeleteByTournament(userCtx, id); err != nil {
		return backendFault(s.logger, "delete tournament entries", err)
	}
	if err := s.tournaments.Delete(userCtx, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return apperrors.NewNotFoundError("Tournament not found")
		}
		return backendFault(s.logger, "delete tournament", err)
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "delete",
		TargetTable: repository.TableTournaments,
		TargetID:    id,
	})
	s.upcoming.Trigger()
	return nil
}

// EnterTeam enters the caller's own team into a tournament
func (s *TournamentService) EnterTeam(ctx context.Context, session domain.Session, tournamentID string) (*domain.TournamentEntry, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	release, err := s.guard.Acquire(ctx, submitScopeEntry, session.UserID)
	if err != nil {
		return nil, err
	}
	defer release()
	userCtx := asUser(ctx, session)

	t, err := s.tournaments.GetByID(userCtx, tournamentID)
	if err != nil {
		return nil, backendFault(s.logger, "get tournament", err)
	}
	if t == nil {
		return nil, apperrors.NewNotFoundError("Tournament not found")
	}

	team, err := s.teams.GetByCaptain(userCtx, session.UserID)
	if err != nil {
		return nil, backendFault(s.logger, "get team by captain", err)
	}
	if team == nil {
		return nil, validationError(rules.FieldErrors{"team_id": "Register a team before entering a tournament"})
	}

	entries, err := s.registrations.ListByTournament(userCtx, tournamentID)
	if err != nil {
		return nil, backendFault(s.logger, "list tournament entries", err)
	}
	already := false
	for _, e := range entries {
		if e.TeamID == team.ID {
			already = true
			break
		}
	}

	if errs := rules.ValidateTeamEntry(*t, len(entries), already, s.now()); !errs.OK() {
		return nil, validationError(errs)
	}

	entry, err := s.registrations.Create(userCtx, domain.TournamentEntry{
		TournamentID: tournamentID,
		TeamID:       team.ID,
	})
	if err != nil {
		return nil, backendFault(s.logger, "create tournament entry", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"tournament_id": tournamentID,
		"team_id":       team.ID,
	}).Info("Team entered tournament")
	return entry, nil
}

// ListEntries returns the teams entered into a tournament
func (s *TournamentService) ListEntries(ctx context.Context, tournamentID string) ([]domain.TournamentEntry, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	entries, err := s.registrations.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, backendFault(s.logger, "list tournament entries", err)
	}
	if entries == nil {
		entries = []domain.TournamentEntry{}
	}
	return entries, nil
}
