package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	manuscriptservice "ijaism/contexts/editorial-workflow/manuscript-service"
	postgresadapter "ijaism/contexts/editorial-workflow/manuscript-service/adapters/postgres"
	workerapp "ijaism/contexts/editorial-workflow/manuscript-service/application/workers"
	contractsv1 "ijaism/contracts/gen/events/v1"
	"ijaism/internal/platform/config"
	"ijaism/internal/platform/db"
	"ijaism/internal/platform/httpserver"
	"ijaism/internal/platform/messaging"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const reminderInterval = 15 * time.Minute

type APIApp struct {
	server   *httpserver.Server
	database *db.Database
	logger   *slog.Logger
}

type WorkerApp struct {
	database         *db.Database
	bus              *messaging.Bus
	outboxRelay      workerapp.OutboxRelay
	reminders        workerapp.ReviewReminderJob
	pollInterval     time.Duration
	reminderInterval time.Duration
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "api")

	var (
		module   manuscriptservice.Module
		database *db.Database
	)
	if cfg.DBDriver == config.DriverMemory {
		module = manuscriptservice.NewInMemoryModule(logger)
	} else {
		database, err = openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(database.DB, logger)
		if err := repo.Migrate(context.Background()); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate editorial schema: %w", err)
		}
		module = manuscriptservice.NewModule(moduleDependencies(cfg, repo, logger))
	}

	if cfg.BootstrapAdminEmail != "" {
		admin, created, err := module.BootstrapAdmin.Execute(context.Background(), cfg.BootstrapAdminEmail, cfg.BootstrapAdminName)
		if err != nil {
			if database != nil {
				_ = database.Close()
			}
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("bootstrap admin ensured",
			"event", "bootstrap_admin_ensured",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"user_id", admin.UserID,
			"created", created,
		)
	}

	server := httpserver.New(module, httpserver.NewTokenVerifier(cfg.JWTSecret), logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		database: database,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "worker")
	if cfg.DBDriver == config.DriverMemory {
		return nil, errors.New("worker requires DB_DRIVER postgres or mysql")
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(database.DB, logger)
	return &WorkerApp{
		database: database,
		bus:      bus,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		reminders: workerapp.ReviewReminderJob{
			Reviews:   repo,
			Clock:     postgresadapter.SystemClock{},
			IDGen:     postgresadapter.UUIDGenerator{},
			LeadTime:  cfg.Policy.ReminderLeadTime,
			BatchSize: 100,
			Disabled:  !cfg.EnableReviewReminders,
			Logger:    logger,
		},
		pollInterval:     cfg.OutboxPollInterval,
		reminderInterval: reminderInterval,
		logger:           logger,
	}, nil
}

func moduleDependencies(cfg config.Config, repo *postgresadapter.Repository, logger *slog.Logger) manuscriptservice.Dependencies {
	return manuscriptservice.Dependencies{
		Articles:           repo,
		Reviews:            repo,
		Users:              repo,
		Journals:           repo,
		Idempotency:        repo,
		Clock:              postgresadapter.SystemClock{},
		IDGenerator:        postgresadapter.UUIDGenerator{},
		ReviewPeriod:       cfg.Policy.ReviewPeriod,
		AutoAssignAttempts: cfg.Policy.AutoAssignAttempts,
		IdempotencyTTL:     cfg.Policy.IdempotencyTTL,
		DOIPrefix:          cfg.Policy.DOIPrefix,
		Logger:             logger,
	}
}

func openDatabase(cfg config.Config) (*db.Database, error) {
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, errors.New("DATABASE_DSN is required")
	}
	return db.Connect(cfg.DBDriver, cfg.DatabaseDSN)
}

func newLogger(cfg config.Config, process string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", cfg.ServiceName, "process", process)
	slog.SetDefault(logger)
	return logger
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

// Run drives the outbox relay and the reminder job on their own tickers
// until ctx is cancelled or either loop fails.
func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.bus.Subscribe(ctx, messaging.AllTopics, "editorial-notifications-cg", w.notify); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"reminder_interval", w.reminderInterval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return runEvery(groupCtx, w.pollInterval, w.outboxRelay.RunOnce)
	})
	group.Go(func() error {
		return runEvery(groupCtx, w.reminderInterval, func(ctx context.Context) error {
			_, err := w.reminders.RunOnce(ctx)
			return err
		})
	})
	return group.Wait()
}

// notify hands editorial events to the notification collaborator. Delivery
// channels live outside this service, so the worker records the hand-off.
func (w *WorkerApp) notify(_ context.Context, event contractsv1.Envelope) error {
	w.logger.Info("editorial notification dispatched",
		"event", "editorial_notification_dispatched",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}

func runEvery(ctx context.Context, interval time.Duration, job func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := job(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.database != nil {
		return w.database.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
