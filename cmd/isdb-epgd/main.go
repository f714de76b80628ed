// Command isdb-epgd is the composition root: it reads a transport stream
// from a multicast source, reassembles PSI/SI sections, decodes PAT/EIT/TOT
// tables, folds the result into an EPG database, serves Prometheus metrics,
// and optionally persists snapshots or mounts a debug filesystem over the
// live database.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/isdb-go/epgd/internal/config"
	"github.com/isdb-go/epgd/internal/dvbdb"
	"github.com/isdb-go/epgd/internal/epg"
	"github.com/isdb-go/epgd/internal/epgfs"
	"github.com/isdb-go/epgd/internal/epgstore"
	"github.com/isdb-go/epgd/internal/metrics"
)

func main() {
	// Under a process supervisor (systemd, docker) stdout is usually a pipe
	// and the supervisor already timestamps each line; only add log's own
	// date/time prefix when attached to an interactive terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		log.SetFlags(0)
	}

	envFile := flag.String("env", ".env", "optional .env file to load before reading configuration")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Printf("isdb-epgd: load env file: %v", err)
	}
	cfg := config.Load()

	runID := uuid.NewString()
	log.Printf("isdb-epgd: starting, run_id=%s", runID)

	reg := metrics.New()
	db := epg.NewDatabase()

	var store *epgstore.Store
	if cfg.StorePath != "" {
		s, err := epgstore.Open(cfg.StorePath)
		if err != nil {
			log.Fatalf("isdb-epgd: open epgstore %s: %v", cfg.StorePath, err)
		}
		store = s
		defer store.Close()
		if err := store.LoadInto(db); err != nil {
			log.Printf("isdb-epgd: warm-start load failed: %v", err)
		}
	}

	tracker := newCompletionTracker(reg, store)
	db.AddEventListener(tracker)

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	go func() {
		log.Printf("isdb-epgd: metrics listening on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Fatalf("isdb-epgd: metrics http: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := dvbdb.Load(cfg.NetworkRegistryPath)
	if err != nil {
		log.Printf("isdb-epgd: load network registry %s: %v", cfg.NetworkRegistryPath, err)
		registry = dvbdb.New()
	}

	if cfg.FSMountPoint != "" {
		unmount, err := epgfs.MountBackground(ctx, cfg.FSMountPoint, db, registry)
		if err != nil {
			log.Printf("isdb-epgd: mount debug tree: %v", err)
		} else {
			log.Printf("isdb-epgd: debug tree mounted at %s", cfg.FSMountPoint)
			defer unmount()
		}
	}

	if store != nil {
		go runSnapshotLoop(ctx, db, store, tracker, cfg.SnapshotInterval)
	}

	if cfg.SourceAddr != "" {
		go runIngest(ctx, cfg, db, reg)
	} else {
		log.Print("isdb-epgd: no ISDB_EPGD_SOURCE_ADDR configured, idling with metrics/debug tree only")
	}

	<-ctx.Done()
	log.Print("isdb-epgd: shutting down")
}
