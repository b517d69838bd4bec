package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dgallion1/promark/internal/api"
	"github.com/dgallion1/promark/internal/config"
	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/dropzone"
	"github.com/dgallion1/promark/internal/metrics"
	"github.com/dgallion1/promark/internal/pipeline"
	"github.com/dgallion1/promark/internal/store"
)

// surfaceID is the element id of the editor page's drop surface.
const surfaceID = "editor"

// surfacePanes are the page elements inside the drop surface.
var surfacePanes = []string{"toolbar", "source", "preview", "outline", "overlay"}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		log.Error("register metrics", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Error("open store", "driver", cfg.StoreDriver, "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}

	state := document.Open(ctx, st, log, document.Options{PersistDebounce: cfg.PersistDebounce, Metrics: m})

	orch := pipeline.NewOrchestrator(cfg, state, log, m)
	orch.Start(ctx)

	dz := dropzone.NewController(dropzone.NewSurface(surfaceID, surfacePanes...), orch, log)
	srv := api.NewServer(state, orch, dz, reg, m, log, cfg)

	// No WriteTimeout: /api/document/events holds its response open.
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Ends event streams and stops drop workers.
		cancel()
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		state.Close(shutdownCtx)
		if err := st.Close(); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	log.Info("starting promark", "addr", cfg.Addr(), "store", cfg.StoreDriver, "path", cfg.StorePath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		state.Close(context.Background())
		st.Close()
		os.Exit(1)
	}
	<-done
}
