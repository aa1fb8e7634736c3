package container

import (
	"context"
	"fmt"

	"cricket-hub/internal/config"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/handler"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/service"
	"cricket-hub/internal/service/auth"
	"cricket-hub/pkg/database"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/redis"

	"github.com/go-chi/chi/v5"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Gateway      *gateway.Gateway
	Repositories *repository.Repositories
	Auth         *auth.Service
	Services     *service.Services
}

// New creates a new dependency injection container. Redis is optional: a
// failed connection is logged and the services run without the shared cache.
// A DATABASE_URL switches table access from PostgREST to a direct pool.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	gatewayLog := logger.Component("gateway")
	supabase := gateway.NewSupabaseClient(cfg, gatewayLog)

	var db *database.PostgresDB
	var store gateway.Store = supabase
	if cfg.DatabaseURL != "" {
		pg, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db = pg
		store = gateway.NewPostgresStore(pg.Pool, gatewayLog)
		logger.Info("Using direct Postgres access for table operations")
	}

	var files gateway.FileStore = supabase
	if cfg.UsesS3Storage() {
		s3Files, err := gateway.NewS3FileStore(ctx, cfg, gatewayLog)
		if err != nil {
			if db != nil {
				db.Close()
			}
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, err
		}
		files = s3Files
	}

	gw := gateway.New(store, supabase, files, cfg.AdminRole)
	repos := repository.NewRepositories(gw)

	opts := service.Options{
		EnforceStatusTransitions: cfg.EnforceStatusTransitions,
		Location:                 cfg.Location(),
		StorageBucket:            cfg.StorageBucket,
		PhoneRegion:              cfg.PhoneRegion,
	}

	cache := service.NewCacheService(redisClient, cfg.Environment, logger.Logger)
	access := service.NewAccessService(gw, cache, logger)
	audit := service.NewAuditService(repos.Audit, logger)
	guard := service.NewSubmissionGuard(redisClient, cfg.Environment, logger.Component("submissions"))
	upcoming := service.NewUpcomingService(repos.Tournament, cache, cfg.PollInterval, opts, logger.Component("upcoming"))

	services := &service.Services{
		Cache:       cache,
		Access:      access,
		Audit:       audit,
		Profile:     service.NewProfileService(repos.Profile, opts, logger),
		Team:        service.NewTeamService(repos, gw, access, audit, guard, cache, opts, logger),
		Tournament:  service.NewTournamentService(repos, access, audit, guard, upcoming, opts, logger),
		Match:       service.NewMatchService(repos, access, audit, opts, logger),
		Upcoming:    upcoming,
		Submissions: guard,
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		RedisClient:  redisClient,
		Gateway:      gw,
		Repositories: repos,
		Auth:         auth.NewService(supabase, cfg.SupabaseJWTSecret, cfg.AuthRedirectURL, logger.Component("auth")),
		Services:     services,
	}, nil
}

// HealthChecks returns the dependencies /health reports on
func (c *Container) HealthChecks() map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient
	}
	return checks
}

// Handlers builds every HTTP handler over the container's services
func (c *Container) Handlers() *handler.Handlers {
	s := c.Services
	return &handler.Handlers{
		Health:     handler.NewHealthHandler(c.HealthChecks(), c.Logger),
		Auth:       handler.NewAuthHandler(c.Auth, s.Access, s.Profile, c.Logger),
		Profile:    handler.NewProfileHandler(s.Profile, c.Logger),
		Tournament: handler.NewTournamentHandler(s.Tournament, s.Match, s.Upcoming, c.Logger),
		Match:      handler.NewMatchHandler(s.Match, c.Logger),
		Team:       handler.NewTeamHandler(s.Team, c.Logger),
		Admin:      handler.NewAdminHandler(s.Audit, c.Logger),
	}
}

// Router returns the fully wired HTTP router
func (c *Container) Router() *chi.Mux {
	return handler.NewRouter(c.Handlers(), handler.RouterConfig{
		AllowedOrigins: c.Config.AllowedOrigins,
		Authenticator:  c.Auth,
		Access:         c.Services.Access,
		Logger:         c.Logger,
	})
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasDatabase returns true when tables are accessed over a direct pool
func (c *Container) HasDatabase() bool {
	return c.DB != nil
}
