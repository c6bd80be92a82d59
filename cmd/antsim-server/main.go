package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(logger)
	defer srv.Close()

	if cfg.SnapshotDir != "" {
		if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
			log.Fatalf("cannot create snapshot directory %s: %v", cfg.SnapshotDir, err)
		}
		srv.SetSnapshotDir(cfg.SnapshotDir)
		logger.Infof("Snapshots enabled: dir=%s every=%d ticks", cfg.SnapshotDir, cfg.SnapshotEveryTicks)
	}
	srv.SetSnapshotEveryTicks(cfg.SnapshotEveryTicks)

	// Optionally boot a run from a scenario file so the server is useful
	// straight away.
	if cfg.ScenarioFile != "" {
		scenario, err := colony.LoadConfig(cfg.ScenarioFile)
		if err != nil {
			log.Fatalf("cannot load scenario file %s: %v", cfg.ScenarioFile, err)
		}
		id, err := srv.createRun(colony.RunID(cfg.DefaultRunID), scenario)
		if err != nil {
			log.Fatalf("cannot create startup run: %v", err)
		}
		logger.Infof("Startup run created: run_id=%s scenario=%s", id, cfg.ScenarioFile)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			srv.handleListRuns(w, r)
		case http.MethodPost:
			srv.handleCreateRun(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/runs/", srv.handleRunRoutes)
	mux.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Infof("Shutting down...")
		srv.Close()
		httpSrv.Close()
	}()

	logger.Infof("antsim-server listening on %s", cfg.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
