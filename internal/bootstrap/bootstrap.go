package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/avolkov/docstream/internal/adapters/http"
	"github.com/avolkov/docstream/internal/cachesync"
	"github.com/avolkov/docstream/internal/config"
	"github.com/avolkov/docstream/internal/core/ports"
	"github.com/avolkov/docstream/internal/core/store"
	"github.com/avolkov/docstream/internal/core/usecase"
	memoryinvalidate "github.com/avolkov/docstream/internal/infrastructure/invalidation/memory"
	natsinvalidate "github.com/avolkov/docstream/internal/infrastructure/invalidation/nats"
	"github.com/avolkov/docstream/internal/infrastructure/notify"
	"github.com/avolkov/docstream/internal/infrastructure/remote"
	"github.com/avolkov/docstream/internal/infrastructure/repository/postgres"
	"github.com/avolkov/docstream/internal/observability/logging"
	"github.com/avolkov/docstream/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue        *store.Store
	Orchestrator *usecase.UploadOrchestrator
	Feed         *notify.Feed
	Bridge       *cachesync.Bridge
	Handler      http.Handler

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logging.New("docstream", cfg.LogLevel)
	uploadMetrics := metrics.NewUploadMetrics("docstream")

	queue := store.New()
	feed := notify.NewFeed(log, 50)

	remoteClient := remote.New(cfg.RemoteBaseURL, cfg.RemoteAPIKey, cfg.RemoteTimeout)

	var invalidator ports.CacheInvalidator
	closers := make([]func(), 0, 2)
	if cfg.NATSURL != "" {
		natsInvalidator, err := natsinvalidate.New(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			return nil, fmt.Errorf("init cache invalidator: %w", err)
		}
		closers = append(closers, natsInvalidator.Close)
		invalidator = natsInvalidator
	} else {
		invalidator = memoryinvalidate.New()
	}

	bridge := cachesync.NewBridge(invalidator, cachesync.BridgeOptions{
		Logger:         log,
		Observe:        uploadMetrics.ObserveInvalidation,
		CoalesceWindow: cfg.InvalidationCoalesce,
	})
	closers = append(closers, bridge.Close)

	var history ports.UploadHistory
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		history = repo
	}

	validator := usecase.NewFileValidator(cfg.AllowedMediaTypes, cfg.MaxUploadBytes)
	orchestrator := usecase.NewUploadOrchestrator(queue, remoteClient, feed, bridge, validator, usecase.OrchestratorOptions{
		History:      history,
		Observer:     uploadMetrics,
		Logger:       log,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
	})

	router := httpadapter.NewRouter(cfg, orchestrator, orchestrator, queue, feed, history, uploadMetrics.Handler(), log)

	return &App{
		Config: cfg,
		Log:    log,

		Queue:        queue,
		Orchestrator: orchestrator,
		Feed:         feed,
		Bridge:       bridge,
		Handler:      router.Handler(),

		closeFn: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
