package rules

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cricket-hub/internal/domain"
)

const (
	MinTournamentName = 3
	MinTeams          = 2
	MaxTeams          = 32
)

// TournamentInput is the tournament form as submitted
type TournamentInput struct {
	Name                 string                  `json:"name"`
	Description          string                  `json:"description"`
	StartDate            time.Time               `json:"start_date"`
	EndDate              time.Time               `json:"end_date"`
	RegistrationDeadline time.Time               `json:"registration_deadline"`
	MaxTeams             int                     `json:"max_teams"`
	Status               domain.TournamentStatus `json:"status"`
	ManOfTournament      *string                 `json:"man_of_tournament,omitempty"`
}

// ValidateTournament checks a tournament form. In ModeEdit the start and
// deadline are allowed to be in the past.
func ValidateTournament(in TournamentInput, now time.Time, mode Mode) FieldErrors {
	errs := FieldErrors{}

	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) < MinTournamentName {
		errs.Add("name", fmt.Sprintf("Tournament name must be at least %d characters", MinTournamentName))
	}

	switch {
	case in.StartDate.IsZero():
		errs.Add("start_date", "Start date is required")
	case mode == ModeCreate && !in.StartDate.After(now):
		errs.Add("start_date", "Start date must be in the future")
	}

	switch {
	case in.EndDate.IsZero():
		errs.Add("end_date", "End date is required")
	case !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate):
		errs.Add("end_date", "End date must be on or after the start date")
	}

	switch {
	case in.RegistrationDeadline.IsZero():
		errs.Add("registration_deadline", "Registration deadline is required")
	case !in.StartDate.IsZero() && !in.RegistrationDeadline.Before(in.StartDate):
		errs.Add("registration_deadline", "Registration deadline must be before the start date")
	case mode == ModeCreate && !in.RegistrationDeadline.After(now):
		errs.Add("registration_deadline", "Registration deadline must be in the future")
	}

	if in.MaxTeams < MinTeams || in.MaxTeams > MaxTeams {
		errs.Add("max_teams", fmt.Sprintf("Max teams must be between %d and %d", MinTeams, MaxTeams))
	}

	if in.Status != "" && !in.Status.Valid() {
		errs.Add("status", fmt.Sprintf("Unknown status %q", in.Status))
	}

	return errs
}

// ValidateTournamentTransition is the optional forward-only check applied on edit
func ValidateTournamentTransition(from, to domain.TournamentStatus) FieldErrors {
	errs := FieldErrors{}
	if to == "" || from == to {
		return errs
	}
	if !from.CanTransitionTo(to) {
		errs.Add("status", fmt.Sprintf("Cannot move tournament from %s to %s", from, to))
	}
	return errs
}

// ValidateTeamEntry checks that a team may enter t right now
func ValidateTeamEntry(t domain.Tournament, enteredCount int, alreadyEntered bool, now time.Time) FieldErrors {
	errs := FieldErrors{}
	switch {
	case t.Status != domain.TournamentRegistrationOpen:
		errs.Add("tournament_id", "Registration is not open for this tournament")
	case !now.Before(t.RegistrationDeadline):
		errs.Add("tournament_id", "The registration deadline has passed")
	case alreadyEntered:
		errs.Add("team_id", "This team is already registered for the tournament")
	case enteredCount >= t.MaxTeams:
		errs.Add("tournament_id", "This tournament is full")
	}
	return errs
}

// ToTournament applies the input onto a record; status defaults to upcoming
func (in TournamentInput) ToTournament() domain.Tournament {
	status := in.Status
	if status == "" {
		status = domain.TournamentUpcoming
	}
	return domain.Tournament{
		Name:                 strings.TrimSpace(in.Name),
		Description:          in.Description,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		RegistrationDeadline: in.RegistrationDeadline,
		MaxTeams:             in.MaxTeams,
		Status:               status,
		ManOfTournament:      in.ManOfTournament,
	}
}
