// Command listat prints the demonlist as it stood at a given moment. The
// timestamp may be RFC 3339 or natural language ("yesterday at 5pm",
// "3 days ago").
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	demonservice "github.com/demonlist-club/demonlist-backend/app/modules/demon/application"
	"github.com/demonlist-club/demonlist-backend/config"
	"github.com/demonlist-club/demonlist-backend/db/bundb"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel/trace/noop"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: listat [-config config.yaml] <timestamp>")
		os.Exit(2)
	}
	input := flag.Arg(0)

	at, err := parseTimestamp(input, time.Now())
	if err != nil {
		log.Fatalf("failed to parse timestamp %q: %v", input, err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbService.GetDB().Close()

	bus := eventbus.NewInProcessBus(watermill.NopLogger{})
	defer bus.Close()

	demons := demonservice.NewDemonService(
		dbService.DemonDB,
		bus,
		slog.New(slog.NewTextHandler(os.Stderr, nil)),
		metrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("listat"),
	)

	list, err := demons.ListAt(ctx, at)
	if err != nil {
		log.Fatalf("failed to reconstruct list: %v", err)
	}

	fmt.Printf("List at %s (%d demons):\n", at.Format(time.RFC3339), len(list))
	for _, d := range list {
		fmt.Printf("%4d. %s (id %d)\n", d.Position, d.Name, d.ID)
	}
}

// parseTimestamp accepts RFC 3339 first and falls back to natural language.
func parseTimestamp(input string, now time.Time) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, input); err == nil {
		return ts, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, now)
	if err != nil {
		return time.Time{}, err
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("no timestamp recognized")
	}
	return r.Time, nil
}
