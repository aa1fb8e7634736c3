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

// MatchScheduleInput is the match edit form. Teams and tournament are locked.
type MatchScheduleInput struct {
	ScheduledDate string             `json:"scheduled_date"`
	ScheduledTime string             `json:"scheduled_time"`
	Status        domain.MatchStatus `json:"status,omitempty"`
}

// MatchService manages fixtures and results
type MatchService struct {
	matches     repository.MatchRepository
	tournaments repository.TournamentRepository
	teams       repository.TeamRepository
	access      *AccessService
	audit       *AuditService
	enforce     bool
	now         func() time.Time
	logger      *logger.Logger
}

// NewMatchService creates a new match service
func NewMatchService(repos *repository.Repositories, access *AccessService, audit *AuditService, opts Options, logger *logger.Logger) *MatchService {
	return &MatchService{
		matches:     repos.Match,
		tournaments: repos.Tournament,
		teams:       repos.Team,
		access:      access,
		audit:       audit,
		enforce:     opts.EnforceStatusTransitions,
		now:         opts.clock(),
		logger:      logger,
	}
}

// ListByTournament returns a tournament's matches ordered by schedule
func (s *MatchService) ListByTournament(ctx context.Context, tournamentID string) ([]domain.Match, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, backendFault(s.logger, "get tournament", err)
	}
	if t == nil {
		return nil, apperrors.NewNotFoundError("Tournament not found")
	}
	list, err := s.matches.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, backendFault(s.logger, "list matches", err)
	}
	if list == nil {
		list = []domain.Match{}
	}
	return list, nil
}

// Get returns one match or a not-found error
func (s *MatchService) Get(ctx context.Context, id string) (*domain.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get match", err)
	}
	if m == nil {
		return nil, apperrors.NewNotFoundError("Match not found")
	}
	return m, nil
}

// Create schedules a match between two existing teams
func (s *MatchService) Create(ctx context.Context, session domain.Session, in rules.MatchInput) (*domain.Match, error) {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	scheduledAt, errs := rules.ValidateMatch(in, s.now(), rules.ModeCreate)
	if errs.OK() {
		if err := s.checkReferences(userCtx, in, errs); err != nil {
			return nil, err
		}
	}
	if !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Match validation failed")
		return nil, validationError(errs)
	}

	status := in.Status
	if status == "" {
		status = domain.MatchScheduled
	}
	created, err := s.matches.Create(userCtx, domain.Match{
		TournamentID: in.TournamentID,
		Team1ID:      in.Team1ID,
		Team2ID:      in.Team2ID,
		ScheduledAt:  scheduledAt,
		Status:       status,
	})
	if err != nil {
		return nil, backendFault(s.logger, "create match", err)
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "create",
		TargetTable: repository.TableMatches,
		TargetID:    created.ID,
	})
	return created, nil
}

// checkReferences adds field errors for a missing tournament or team
func (s *MatchService) checkReferences(ctx context.Context, in rules.MatchInput, errs rules.FieldErrors) error {
	t, err := s.tournaments.GetByID(ctx, in.TournamentID)
	if err != nil {
		return backendFault(s.logger, "get tournament", err)
	}
	if t == nil {
		errs.Add("tournament_id", "Tournament does not exist")
	}
	for field, id := range map[string]string{"team1_id": in.Team1ID, "team2_id": in.Team2ID} {
		team, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return backendFault(s.logger, "get team", err)
		}
		if team == nil {
			errs.Add(field, "Team does not exist")
		}
	}
	return nil
}

// Update changes a match's schedule and status
func (s *MatchService) Update(ctx context.Context, session domain.Session, id string, in MatchScheduleInput) (*domain.Match, error) {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	existing, err := s.matches.GetByID(userCtx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get match", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("Match not found")
	}

	status := in.Status
	if status == "" {
		status = existing.Status
	}
	scheduledAt, errs := rules.ValidateMatch(rules.MatchInput{
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		Status:        status,
	}, s.now(), rules.ModeEdit)
	if s.enforce {
		for field, msg := range rules.ValidateMatchTransition(existing.Status, status) {
			errs.Add(field, msg)
		}
	}
	if !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Match validation failed")
		return nil, validationError(errs)
	}

	updated, err := s.matches.Update(userCtx, id, gateway.Record{
		"scheduled_at": scheduledAt,
		"status":       string(status),
	})
	if err != nil {
		return nil, backendFault(s.logger, "update match", err)
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("Match not found")
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "update",
		TargetTable: repository.TableMatches,
		TargetID:    id,
	})
	return updated, nil
}

// RecordResult stores scores and winner and completes the match
func (s *MatchService) RecordResult(ctx context.Context, session domain.Session, id string, in rules.ResultInput) (*domain.Match, error) {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return nil, err
	}
	userCtx := asUser(ctx, session)

	existing, err := s.matches.GetByID(userCtx, id)
	if err != nil {
		return nil, backendFault(s.logger, "get match", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("Match not found")
	}

	update, errs := rules.RecordMatchResult(*existing, in)
	if s.enforce && errs.OK() {
		errs = rules.ValidateMatchTransition(existing.Status, update.Status)
	}
	if !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Match result validation failed")
		return nil, validationError(errs)
	}

	patch := gateway.Record{
		"team1_score": update.Team1Score,
		"team2_score": update.Team2Score,
		"winner_id":   update.WinnerID,
		"status":      string(update.Status),
	}
	if update.MatchDetails != nil {
		patch["match_details"] = update.MatchDetails
	}
	updated, err := s.matches.Update(userCtx, id, patch)
	if err != nil {
		return nil, backendFault(s.logger, "record match result", err)
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("Match not found")
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "record_result",
		TargetTable: repository.TableMatches,
		TargetID:    id,
	})
	return updated, nil
}

// Delete removes a match
func (s *MatchService) Delete(ctx context.Context, session domain.Session, id string) error {
	if err := s.access.RequireAdmin(ctx, session); err != nil {
		return err
	}
	if err := s.matches.Delete(asUser(ctx, session), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return apperrors.NewNotFoundError("Match not found")
		}
		return backendFault(s.logger, "delete match", err)
	}

	s.audit.Log(ctx, session, domain.StructuredAction{
		Action:      "delete",
		TargetTable: repository.TableMatches,
		TargetID:    id,
	})
	return nil
}
