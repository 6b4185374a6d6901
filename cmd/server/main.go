package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tilbrook/vendex/internal/api"
	"github.com/tilbrook/vendex/internal/config"
	"github.com/tilbrook/vendex/internal/extract"
	"github.com/tilbrook/vendex/internal/ocr"
	"github.com/tilbrook/vendex/internal/parser"
	"github.com/tilbrook/vendex/internal/pipeline"
	"github.com/tilbrook/vendex/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	ai := extract.NewClient(extract.ClientConfig{
		APIKey:        cfg.OpenAIAPIKey,
		BaseURL:       cfg.OpenAIBaseURL,
		Model:         cfg.Model,
		VisionModel:   cfg.VisionModel,
		MaxChunkChars: cfg.MaxChunkChars,
		ChunkDelay:    cfg.ChunkDelay,
	}, log)

	deps := parser.Deps{Vision: ai}
	if cfg.OCREnabled {
		engine, err := ocr.New(ocr.Options{
			TesseractPath: cfg.TesseractPath,
			PdftoppmPath:  cfg.PdftoppmPath,
			MaxProcs:      cfg.OCRMaxProcs,
		}, log)
		if err != nil {
			log.Warn("ocr unavailable, scanned documents fall back to vision only", "error", err)
		} else {
			deps.OCR = engine
			deps.Renderer = engine
		}
	}

	var st *store.Client
	if cfg.StoreURL != "" {
		st = store.NewClient(cfg.StoreURL, cfg.StoreAPIKey)
	}

	// Initialize pipeline.
	proc := pipeline.NewProcessor(deps, ai, log)
	orch := pipeline.NewOrchestrator(cfg, proc, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, proc, ai, log, cfg)

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

		if st != nil {
			st.Close()
		}
	}()

	log.Info("starting vendex", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
