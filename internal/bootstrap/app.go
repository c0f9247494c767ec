// Package bootstrap assembles repositories, services, and handlers so
// the API server and the worker share one wiring path.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	googleauth "planreview-backend/internal/auth"
	"planreview-backend/internal/comments"
	"planreview-backend/internal/integration"
	"planreview-backend/internal/integration/anthropic"
	"planreview-backend/internal/jobs"
	"planreview-backend/internal/notify"
	"planreview-backend/internal/plans"
	"planreview-backend/internal/ratelimit"
	"planreview-backend/internal/shared/config"
	"planreview-backend/internal/shared/storage/db"
	"planreview-backend/internal/shared/telemetry"
	"planreview-backend/internal/users"
	"planreview-backend/internal/versions"
)

type App struct {
	Config config.Config
	DB     *sql.DB

	UsersRepo    users.Repo
	PlansRepo    plans.Repo
	VersionsRepo versions.Repo
	CommentsRepo comments.Repo
	JobsRepo     jobs.Repo
	Limiter      ratelimit.Limiter

	PlansService    *plans.Service
	CommentsService *comments.Service
	Coordinator     *jobs.Coordinator
	Pool            *jobs.Pool

	PlansHandler    *plans.Handler
	VersionsHandler *versions.Handler
	CommentsHandler *comments.Handler
	JobsHandler     *jobs.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Options tweak wiring for particular entry points and tests.
type Options struct {
	// Client overrides the generation client. Tests inject fakes here.
	Client integration.Client
	// PoolOptions: sized from config when zero.
	WorkerCount int
}

// Build connects storage and wires every service. With an empty
// DATABASE_URL everything runs on in-memory stores.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.RunMigrations(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		app.DB = database
	}

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.PlansRepo = &plans.PGRepo{DB: app.DB}
		app.VersionsRepo = &versions.PGRepo{DB: app.DB}
		app.CommentsRepo = &comments.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
	} else {
		telemetry.Warn("bootstrap.memory_mode", map[string]any{
			"reason": "DATABASE_URL not set",
		})
		versionRepo := versions.NewMemoryRepo()
		planRepo := plans.NewMemoryRepo(versionRepo)
		commentRepo := comments.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.PlansRepo = planRepo
		app.VersionsRepo = versionRepo
		app.CommentsRepo = commentRepo
		app.JobsRepo = jobs.NewMemoryRepo(planRepo, commentRepo, versionRepo)
	}

	app.Limiter = buildLimiter(cfg, app.DB)

	client := opts.Client
	if client == nil {
		client = anthropic.New(cfg.AnthropicAPIKey, cfg.IntegrationModel, cfg.IntegrationTimeout)
	}
	integrator := integration.NewIntegrator(client, cfg.IntegrationAttempts, cfg.IntegrationDelay)

	app.PlansService = &plans.Service{Repo: app.PlansRepo}
	app.CommentsService = comments.NewService(app.CommentsRepo, app.PlansRepo)
	app.Coordinator = jobs.NewCoordinator(
		app.JobsRepo,
		app.CommentsRepo,
		app.PlansRepo,
		app.Limiter,
		integrator,
		notify.LogNotifier{},
		cfg.AcceptLimit,
		cfg.AcceptWindow,
	)

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = cfg.WorkerCount
	}
	app.Pool = jobs.NewPool(app.Coordinator, workerCount, cfg.WorkerPoll)

	app.PlansHandler = &plans.Handler{Service: app.PlansService}
	app.VersionsHandler = &versions.Handler{Repo: app.VersionsRepo, Plans: app.PlansService}
	app.CommentsHandler = &comments.Handler{Service: app.CommentsService}
	app.JobsHandler = jobs.NewHandler(app.Coordinator)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersRepo,
	)

	return app, nil
}

func buildLimiter(cfg config.Config, database *sql.DB) ratelimit.Limiter {
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			telemetry.Warn("bootstrap.redis_url_invalid", map[string]any{"error": err.Error()})
		} else {
			return ratelimit.NewRedisStore(redis.NewClient(redisOpts))
		}
	}
	if database != nil {
		return ratelimit.NewPGStore(database)
	}
	return ratelimit.NewMemoryStore(nil)
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
