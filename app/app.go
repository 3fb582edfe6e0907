// Package app wires configuration, storage, the event bus, the job queue
// and every module into one runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	demonservice "github.com/demonlist-club/demonlist-backend/app/modules/demon/application"
	playerservice "github.com/demonlist-club/demonlist-backend/app/modules/player/application"
	recordservice "github.com/demonlist-club/demonlist-backend/app/modules/record/application"
	scoreservice "github.com/demonlist-club/demonlist-backend/app/modules/score/application"
	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scorehandlers "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/handlers"
	scorequeue "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/queue"
	scorerouter "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/router"
	"github.com/demonlist-club/demonlist-backend/config"
	"github.com/demonlist-club/demonlist-backend/db/bundb"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel"
)

// App owns every long-lived component of the backend.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	DemonService  *demonservice.DemonService
	PlayerService *playerservice.PlayerService
	RecordService *recordservice.RecordService
	ScoreService  *scoreservice.ScoreService

	Queue  scorequeue.QueueService
	Router *scorerouter.ScoreRouter

	db  *bundb.DBService
	bus eventbus.RouterBus
}

// NewApp builds the full application from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	wmLogger := watermill.NewSlogLogger(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	var bus eventbus.RouterBus
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewNatsBus(cfg.NATS.URL, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS event bus: %w", err)
		}
	} else {
		logger.Info("No NATS URL configured, using in-process event bus")
		bus = eventbus.NewInProcessBus(wmLogger)
	}

	tracer := otel.GetTracerProvider().Tracer("demonlist-backend")
	curve := scoredomain.Curve{
		MaxPoints:      cfg.List.MaxPoints,
		PositionDecay:  cfg.List.PositionDecay,
		PartialBase:    cfg.List.PartialBase,
		PartialDivisor: cfg.List.PartialDivisor,
	}

	demonSvc := demonservice.NewDemonService(
		dbService.DemonDB, bus, logger,
		metrics.NewPrometheusMetrics(registry, "demon"), tracer,
	)
	playerSvc := playerservice.NewPlayerService(
		dbService.PlayerDB, bus, logger,
		metrics.NewPrometheusMetrics(registry, "player"), tracer,
	)
	recordSvc := recordservice.NewRecordService(
		dbService.RecordDB, bus, logger,
		metrics.NewPrometheusMetrics(registry, "record"), tracer,
	)
	scoreSvc := scoreservice.NewScoreService(
		dbService.ScoreDB, cfg.List.ScoredWindow, curve, logger,
		metrics.NewPrometheusMetrics(registry, "score"), tracer,
	)

	queue, err := scorequeue.NewService(
		ctx, dbService.GetDB(), logger, cfg.Postgres.DSN,
		metrics.NewPrometheusMetrics(registry, "score_queue"), scoreSvc,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize score queue: %w", err)
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	router := scorerouter.NewScoreRouter(logger, wmRouter, bus, registry)

	// One trigger per second is plenty; the queue coalesces the rest.
	handlers := scorehandlers.NewScoreHandlers(queue, rate.NewLimiter(rate.Limit(1), 5), logger)
	if err := router.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure score router: %w", err)
	}

	return &App{
		Cfg:           cfg,
		Logger:        logger,
		Registry:      registry,
		DemonService:  demonSvc,
		PlayerService: playerSvc,
		RecordService: recordSvc,
		ScoreService:  scoreSvc,
		Queue:         queue,
		Router:        router,
		db:            dbService,
		bus:           bus,
	}, nil
}

// DB returns the database service.
func (a *App) DB() *bundb.DBService {
	return a.db
}

// Bus returns the event bus.
func (a *App) Bus() eventbus.RouterBus {
	return a.bus
}

// Start brings up the queue workers and the event router. It blocks until
// the context is cancelled or the router stops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start queue: %w", err)
	}
	return a.Router.Run(ctx)
}

// Close shuts everything down in reverse dependency order.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.Router.Close(); err != nil {
		firstErr = err
	}
	if err := a.Queue.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.bus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.db.GetDB().Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
