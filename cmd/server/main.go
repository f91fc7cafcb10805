package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Batipro56920/batipro/internal/api"
	"github.com/Batipro56920/batipro/internal/config"
	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/pipeline"
	"github.com/Batipro56920/batipro/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Parser rules: defaults, optionally overridden from a YAML file.
	rules := devis.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := devis.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Error("invalid rules file", "path", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
		rules = loaded
		log.Info("loaded rules overrides", "path", cfg.RulesFile)
	}
	parser := devis.NewParser(rules)

	// Database.
	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := st.Init(ctx); err != nil {
		log.Error("init database schema", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	importer := pipeline.NewImporter(parser, st, log)
	orch := pipeline.NewOrchestrator(cfg, importer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, st, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		st.Close()
	}()

	log.Info("starting batipro devis service", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
