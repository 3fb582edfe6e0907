// Command demonlist runs the backend: the event router, the recompute
// queue workers and the observability HTTP endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/demonlist-club/demonlist-backend/app"
	"github.com/demonlist-club/demonlist-backend/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	httpServer := newObservabilityServer(application)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			application.Logger.Error("observability server stopped", "error", err)
		}
	}()

	if err := application.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("application failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error("observability server shutdown failed", "error", err)
	}
	if err := application.Close(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	application.Logger.Info("application shut down gracefully")
}
