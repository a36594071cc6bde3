// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LilVoxy/fii_analytics/ETL/config"
	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/pipeline"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
	"github.com/LilVoxy/fii_analytics/routes"
	"github.com/LilVoxy/fii_analytics/websocket"
)

func main() {
	cfg := config.GetConfig()

	logger, err := utils.NewETLLogger(cfg.LogFile, cfg.EnableDetailedLogging)
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p, err := pipeline.New(ctx, cfg, logger, metrics.New(registry))
	if err != nil {
		log.Fatalf("Could not create pipeline: %v", err)
	}
	defer p.Close()

	wsManager := websocket.NewManager()
	go wsManager.Run(ctx)

	p.OnEvent(func(e pipeline.Event) {
		wsManager.Publish(e)
	})

	if cfg.Server.Schedule {
		scheduler, err := p.Schedule(ctx, cfg.RunInterval)
		if err != nil {
			log.Fatalf("Could not start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	router := mux.NewRouter()
	routes.SetupRoutes(router, routes.Dependencies{
		Store:     p.Store,
		LogRepo:   p.LogRepo,
		Years:     cfg.Years,
		WSManager: wsManager,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		PublicDir: cfg.Server.PublicDir,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Dashboard listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down dashboard server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server: %v", err)
	}
}
