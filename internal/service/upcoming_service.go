package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/rules"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const upcomingJobName = "upcoming-tournament"

// UpcomingService keeps the "nearest upcoming tournament" projection fresh.
// A gocron job recomputes it every interval; mutations call Trigger.
type UpcomingService struct {
	repo     repository.TournamentRepository
	cache    *CacheService
	interval time.Duration
	now      func() time.Time
	logger   *logger.Logger

	latest   atomic.Pointer[domain.UpcomingProjection]
	inFlight atomic.Bool

	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

// NewUpcomingService creates the service; call Start to begin polling
func NewUpcomingService(repo repository.TournamentRepository, cache *CacheService, interval time.Duration, opts Options, logger *logger.Logger) *UpcomingService {
	return &UpcomingService{
		repo:     repo,
		cache:    cache,
		interval: interval,
		now:      opts.clock(),
		logger:   logger,
	}
}

// Start schedules the poll job. The first run happens immediately.
func (s *UpcomingService) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					s.logger.Error("Scheduler job panicked",
						zap.String("job_id", jobID.String()),
						zap.String("job_name", jobName),
						zap.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.WithError(err).Warn("Upcoming tournament poll failed")
			}
		}),
		gocron.WithName(upcomingJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	s.scheduler = sched
	sched.Start()
	s.logger.WithField("interval", s.interval.String()).Info("Upcoming tournament poller started")
	return nil
}

// Stop shuts the scheduler down; safe to call more than once
func (s *UpcomingService) Stop() error {
	s.stopOnce.Do(func() {
		if s.scheduler == nil {
			return
		}
		s.logger.Info("Upcoming tournament poller stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// Refresh recomputes the projection. When another refresh is already
// running it returns the last projection without querying.
func (s *UpcomingService) Refresh(ctx context.Context) (*domain.UpcomingProjection, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("Upcoming refresh already in flight, skipping")
		return s.latest.Load(), nil
	}
	defer s.inFlight.Store(false)

	now := s.now()
	all, err := s.repo.ListNotStarted(ctx, now)
	if err != nil {
		return nil, backendFault(s.logger, "list upcoming tournaments", err)
	}

	p := rules.Project(all, now)
	s.latest.Store(&p)
	_ = s.cache.SetJSON(ctx, s.cache.Keys().KeyUpcomingTournament(), p, redis.TTLUpcoming)
	return &p, nil
}

// Trigger refreshes in the background after a tournament mutation
func (s *UpcomingService) Trigger() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.WithError(err).Warn("Upcoming tournament refresh failed")
		}
	}()
}

// Current returns the latest projection: memory, then the shared cache,
// then a fresh computation.
func (s *UpcomingService) Current(ctx context.Context) (*domain.UpcomingProjection, error) {
	if p := s.latest.Load(); p != nil {
		return p, nil
	}

	var cached domain.UpcomingProjection
	if s.cache.GetJSON(ctx, s.cache.Keys().KeyUpcomingTournament(), &cached) {
		return &cached, nil
	}

	p, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &domain.UpcomingProjection{ComputedAt: s.now()}, nil
	}
	return p, nil
}
