package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/demonlist-club/demonlist-backend/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newObservabilityServer serves health, readiness and Prometheus metrics.
func newObservabilityServer(application *app.App) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := application.DB().GetDB().PingContext(req.Context()); err != nil {
			http.Error(w, "database unreachable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := application.Queue.HealthCheck(req.Context()); err != nil {
			http.Error(w, "queue unhealthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	r.Get("/debug/jobs", func(w http.ResponseWriter, req *http.Request) {
		jobs, err := application.Queue.PendingJobs(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jobs)
	})

	r.Handle("/metrics", promhttp.HandlerFor(application.Registry, promhttp.HandlerOpts{}))

	addr := application.Cfg.Observability.MetricsAddress
	if addr == "" {
		addr = ":9090"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
