package repository

import (
	"context"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
)

// TournamentRepository defines the interface for tournament data operations
type TournamentRepository interface {
	// List returns every tournament ordered by start date
	List(ctx context.Context) ([]domain.Tournament, error)

	// ListNotStarted returns tournaments in a pre-start status starting at or after now
	ListNotStarted(ctx context.Context, now time.Time) ([]domain.Tournament, error)

	// GetByID returns nil, nil when the tournament does not exist
	GetByID(ctx context.Context, id string) (*domain.Tournament, error)

	// Create inserts a tournament and returns the stored row
	Create(ctx context.Context, t domain.Tournament) (*domain.Tournament, error)

	// Update replaces the editable fields of a tournament
	Update(ctx context.Context, t domain.Tournament) (*domain.Tournament, error)

	// Delete removes a tournament
	Delete(ctx context.Context, id string) error
}

// RegistrationRepository defines the interface for tournament entries
type RegistrationRepository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]domain.TournamentEntry, error)
	Exists(ctx context.Context, tournamentID, teamID string) (bool, error)
	Create(ctx context.Context, entry domain.TournamentEntry) (*domain.TournamentEntry, error)
	DeleteByTournament(ctx context.Context, tournamentID string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

// MatchRepository defines the interface for match data operations
type MatchRepository interface {
	// ListByTournament returns a tournament's matches ordered by schedule
	ListByTournament(ctx context.Context, tournamentID string) ([]domain.Match, error)

	// GetByID returns nil, nil when the match does not exist
	GetByID(ctx context.Context, id string) (*domain.Match, error)

	Create(ctx context.Context, m domain.Match) (*domain.Match, error)

	// Update writes a whole-record patch
	Update(ctx context.Context, id string, patch gateway.Record) (*domain.Match, error)

	Delete(ctx context.Context, id string) error
	DeleteByTournament(ctx context.Context, tournamentID string) error

	// CountByTeam returns how many matches reference the team on either side
	CountByTeam(ctx context.Context, teamID string) (int, error)
}

// TeamRepository defines the interface for teams and their rosters
type TeamRepository interface {
	List(ctx context.Context) ([]domain.Team, error)
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByCaptain(ctx context.Context, captainID string) (*domain.Team, error)
	Create(ctx context.Context, t domain.Team) (*domain.Team, error)
	UpdateLogo(ctx context.Context, id, logoURL string) (*domain.Team, error)
	Delete(ctx context.Context, id string) error

	// Members returns the roster with the captain first
	Members(ctx context.Context, teamID string) ([]domain.TeamMember, error)

	// AddMembers inserts all members in a single call
	AddMembers(ctx context.Context, teamID string, members []domain.TeamMember) ([]domain.TeamMember, error)

	DeleteMembers(ctx context.Context, teamID string) error
}

// ProfileRepository defines the interface for player profiles
type ProfileRepository interface {
	// GetByUserID returns nil, nil when the user has no profile yet
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)

	// Upsert creates the profile or replaces its fields
	Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error)
}

// AuditRepository defines the interface for the admin audit log
type AuditRepository interface {
	Create(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Tournament   TournamentRepository
	Registration RegistrationRepository
	Match        MatchRepository
	Team         TeamRepository
	Profile      ProfileRepository
	Audit        AuditRepository
}

// NewRepositories builds every repository over one store
func NewRepositories(store gateway.Store) *Repositories {
	return &Repositories{
		Tournament:   NewTournamentRepository(store),
		Registration: NewRegistrationRepository(store),
		Match:        NewMatchRepository(store),
		Team:         NewTeamRepository(store),
		Profile:      NewProfileRepository(store),
		Audit:        NewAuditRepository(store),
	}
}
