package service

import (
	"context"
	"sync"
	"time"

	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"
)

// SubmissionGuard lets one submission per user and form run at a time.
// Locks live in Redis when available so every instance sees them; a local
// set covers single-instance runs and Redis outages.
type SubmissionGuard struct {
	redis  *redis.Client
	keys   *redis.KeyBuilder
	ttl    time.Duration
	logger *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSubmissionGuard creates a guard. redisClient may be nil.
func NewSubmissionGuard(redisClient *redis.Client, environment string, logger *logger.Logger) *SubmissionGuard {
	keys := redis.NewKeyBuilder(environment)
	if redisClient != nil {
		keys = redisClient.KeyBuilder
	}
	return &SubmissionGuard{
		redis:    redisClient,
		keys:     keys,
		ttl:      redis.TTLSubmission,
		logger:   logger,
		inFlight: map[string]struct{}{},
	}
}

// Acquire claims the (scope, user) slot. The returned release must be
// called when the submission finishes.
func (g *SubmissionGuard) Acquire(ctx context.Context, scope, userID string) (func(), error) {
	key := g.keys.KeySubmission(scope, userID)

	if g.redis != nil {
		ok, err := g.redis.SetNX(ctx, key, "1", g.ttl)
		if err == nil {
			if !ok {
				return nil, errAlreadySubmitting()
			}
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := g.redis.Delete(releaseCtx, key); err != nil {
					g.logger.WithError(err).Warn("Failed to release submission lock")
				}
			}, nil
		}
		g.logger.WithError(err).Warn("Submission lock unavailable, using local guard")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, errAlreadySubmitting()
	}
	g.inFlight[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, nil
}

func errAlreadySubmitting() error {
	return errors.NewConflictError("A submission is already in progress")
}
