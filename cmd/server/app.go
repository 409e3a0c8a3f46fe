package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lernia/review-api/internal/config"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/platform/memory"
	"github.com/lernia/review-api/internal/platform/postgres"
	"github.com/lernia/review-api/internal/platform/redis"
	"github.com/lernia/review-api/internal/service/review"
	"github.com/lernia/review-api/internal/store"
	"github.com/lernia/review-api/internal/task"
)

// application holds the shared dependencies so lifecycle and cleanup stay
// in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore    store.CardStore
	sessionStore store.SessionStore

	srsService    srs.Service
	reviewService review.Service

	scheduler *task.Scheduler

	// Non-nil when sessions live in Redis; closed on shutdown.
	redisSessions *redis.SessionStore
}

// newApplication wires all dependencies. The database connection must
// already be established.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	app.cardStore = postgres.NewPostgresCardStore(db, log)

	if err := app.setupSessionStore(); err != nil {
		return nil, err
	}

	app.srsService = srs.NewServiceWithParams(srs.NewParams(srsParamsConfig(cfg)))

	app.reviewService = review.NewService(
		app.cardStore,
		app.sessionStore,
		review.NewSQLTxRunner(db, app.cardStore),
		app.srsService,
		review.Config{
			Archive: review.ArchiveConfig{
				RetireRepetitions: cfg.SRS.RetireRepetitions,
				RetireAfter:       time.Duration(cfg.SRS.RetireAfterDays) * 24 * time.Hour,
			},
		},
		nil,
		log,
	)

	app.scheduler = task.NewScheduler(app.reviewService, task.SchedulerConfig{
		SweepInterval: cfg.Task.SweepInterval,
		SweepTimeout:  cfg.Task.SweepTimeout,
	}, log)

	log.Info("Application initialized successfully")
	return app, nil
}

// setupSessionStore picks the session backend: Redis when an address is
// configured, in-process memory otherwise.
func (app *application) setupSessionStore() error {
	if app.config.Session.RedisAddr == "" {
		app.sessionStore = memory.NewSessionStore(app.config.Session.TTL)
		app.logger.Info("Using in-memory session store",
			"ttl", app.config.Session.TTL)
		return nil
	}

	sessions, err := redis.NewSessionStore(
		app.config.Session.RedisAddr,
		app.config.Session.TTL,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redisSessions = sessions
	app.sessionStore = sessions
	app.logger.Info("Using redis session store",
		"addr", app.config.Session.RedisAddr,
		"ttl", app.config.Session.TTL)
	return nil
}

// Run starts the background scheduler and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start task scheduler: %w", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.redisSessions != nil {
		if err := app.redisSessions.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

// srsParamsConfig translates the optional config overrides into scheduler
// parameters; zero values keep the defaults.
func srsParamsConfig(cfg *config.Config) srs.ParamsConfig {
	pc := srs.ParamsConfig{
		MaxEaseFactor:      cfg.SRS.MaxEaseFactor,
		MasteryRepetitions: cfg.SRS.MasteryRepetitions,
		RetireRepetitions:  cfg.SRS.RetireRepetitions,
	}
	if cfg.SRS.FailureRetryHours > 0 {
		pc.FailureRetry = time.Duration(cfg.SRS.FailureRetryHours) * time.Hour
	}
	if cfg.SRS.RetireAfterDays > 0 {
		pc.RetireAfter = time.Duration(cfg.SRS.RetireAfterDays) * 24 * time.Hour
	}
	return pc
}
