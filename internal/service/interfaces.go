package service

import (
	"context"
	"time"

	"cricket-hub/internal/domain"
)

// Authenticator turns a bearer token into a session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// Options are the config-derived knobs shared by the services
type Options struct {
	// EnforceStatusTransitions rejects backward status moves on edit
	EnforceStatusTransitions bool
	Location                 *time.Location
	StorageBucket            string
	PhoneRegion              string
}

// clock returns "now" in the configured location
func (o Options) clock() func() time.Time {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// Services aggregates the application services
type Services struct {
	Cache       *CacheService
	Access      *AccessService
	Audit       *AuditService
	Profile     *ProfileService
	Team        *TeamService
	Tournament  *TournamentService
	Match       *MatchService
	Upcoming    *UpcomingService
	Submissions *SubmissionGuard
}
