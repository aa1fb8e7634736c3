package domain

import "time"

// TournamentStatus is the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentUpcoming           TournamentStatus = "upcoming"
	TournamentRegistrationOpen   TournamentStatus = "registration_open"
	TournamentRegistrationClosed TournamentStatus = "registration_closed"
	TournamentOngoing            TournamentStatus = "ongoing"
	TournamentCompleted          TournamentStatus = "completed"
)

// tournamentOrder is the forward order of the lifecycle
var tournamentOrder = map[TournamentStatus]int{
	TournamentUpcoming:           0,
	TournamentRegistrationOpen:   1,
	TournamentRegistrationClosed: 2,
	TournamentOngoing:            3,
	TournamentCompleted:          4,
}

// Valid reports whether s is a known status
func (s TournamentStatus) Valid() bool {
	_, ok := tournamentOrder[s]
	return ok
}

// NotStarted reports whether the status counts towards "upcoming"
func (s TournamentStatus) NotStarted() bool {
	return s == TournamentUpcoming || s == TournamentRegistrationOpen || s == TournamentRegistrationClosed
}

// CanTransitionTo allows staying put or moving forward in the lifecycle
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	from, ok := tournamentOrder[s]
	if !ok {
		return next.Valid()
	}
	to, ok := tournamentOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

// Tournament represents a scheduled tournament
type Tournament struct {
	ID                   string           `json:"id,omitempty"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              time.Time        `json:"end_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	MaxTeams             int              `json:"max_teams"`
	Status               TournamentStatus `json:"status"`
	ManOfTournament      *string          `json:"man_of_tournament,omitempty"`
	CreatedBy            string           `json:"created_by,omitempty"`
	CreatedAt            *time.Time       `json:"created_at,omitempty"`
}

// TournamentEntry records a team entered into a tournament
type TournamentEntry struct {
	ID           string     `json:"id,omitempty"`
	TournamentID string     `json:"tournament_id"`
	TeamID       string     `json:"team_id"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// UpcomingProjection is the "nearest upcoming tournament" display model
type UpcomingProjection struct {
	Tournament      *Tournament `json:"tournament"`
	CountdownTarget *time.Time  `json:"countdown_target,omitempty"`
	ComputedAt      time.Time   `json:"computed_at"`
}
