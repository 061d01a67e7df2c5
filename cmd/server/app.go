package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/config"
	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/realtime"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"github.com/yukikurage/creative-task-api/internal/services"
)

// app holds the wiring shared by every command
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	pusher   realtime.Pusher
	notifier *services.NotificationService
	tasks    *services.TaskService
	workload *services.WorkloadService
}

func newApp() (*app, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pusher, err := realtime.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pusher: %w", err)
	}

	store := repository.NewStore(database.GetDB())
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	notifier := services.NewNotificationService(store, pusher, logger, retention)

	// Only hand over a drafter when one is configured so the service sees a nil interface otherwise
	var drafter services.TaskDrafter
	if assistant := services.NewBriefAssistant(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel); assistant != nil {
		drafter = assistant
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		pusher:   pusher,
		notifier: notifier,
		tasks:    services.NewTaskService(store, notifier, drafter, logger),
		workload: services.NewWorkloadService(store, logger),
	}, nil
}

// newLogger writes JSON in release mode and text otherwise
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.GinMode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// close flushes in-flight pushes and releases the push channel
func (a *app) close() {
	a.notifier.Wait()
	if err := a.pusher.Close(); err != nil {
		a.logger.Warn("failed to close notification pusher", "error", err)
	}
}
