// Package scorerouter wires the score module's event handlers into a
// watermill router.
package scorerouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	scorehandlers "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/handlers"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/prometheus/client_golang/prometheus"
)

// ScoreRouter subscribes the score module to every scoring-relevant topic.
type ScoreRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	bus            eventbus.RouterBus
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewScoreRouter creates a new ScoreRouter. Pass a nil registry to disable
// router metrics, e.g. in tests.
func NewScoreRouter(
	logger *slog.Logger,
	router *message.Router,
	bus eventbus.RouterBus,
	prometheusRegistry *prometheus.Registry,
) *ScoreRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &ScoreRouter{
		logger:         logger,
		Router:         router,
		bus:            bus,
		metricsBuilder: metricsBuilder,
	}
}

// Configure installs middlewares and registers all score handlers.
func (r *ScoreRouter) Configure(ctx context.Context, handlers scorehandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for score")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	subscriptions := map[string]message.NoPublishHandlerFunc{
		events.RecordStatusChanged:     handlers.HandleRecordStatusChanged,
		events.DemonAdded:              handlers.HandleDemonChanged,
		events.DemonPositionChanged:    handlers.HandleDemonChanged,
		events.DemonRequirementChanged: handlers.HandleDemonChanged,
		events.DemonRatedChanged:       handlers.HandleDemonChanged,
		events.DemonRemoved:            handlers.HandleDemonChanged,
		events.PlayerBanChanged:        handlers.HandlePlayerChanged,
		events.PlayerResidencyChanged:  handlers.HandlePlayerChanged,
	}
	for topic, handler := range subscriptions {
		r.Router.AddNoPublisherHandler(
			"score."+topic,
			topic,
			r.bus.Subscriber(),
			handler,
		)
	}
	return nil
}

// Run starts the router and blocks until the context is cancelled.
func (r *ScoreRouter) Run(ctx context.Context) error {
	return r.Router.Run(ctx)
}

// Close shuts the router down.
func (r *ScoreRouter) Close() error {
	return r.Router.Close()
}
