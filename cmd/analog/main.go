package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cyclone-analog-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/cyclone-analog-service/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-analog-service/internal/analog"
	"github.com/couchcryptid/cyclone-analog-service/internal/config"
	"github.com/couchcryptid/cyclone-analog-service/internal/observability"
	"github.com/couchcryptid/cyclone-analog-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	clusterer := analog.NewDBSCAN(logger)
	refiner := analog.NewRefiner(analog.PCA{}, cfg.NPoints, cfg.EncodeCacheSize, logger)
	scenario := pipeline.NewScenario(clusterer, refiner, pipeline.ScenarioParams{
		ReferenceSID: cfg.ReferenceSID,
		Eps:          cfg.Eps,
		MinSamples:   cfg.MinSamples,
		NComponents:  cfg.NComponents,
		TopN:         cfg.TopN,
		WindBoost:    cfg.WindBoost,
		RMWShrink:    cfg.RMWShrink,
	}, logger, metrics)

	p := pipeline.New(reader, scenario, writer, logger, metrics, cfg.BatchSize, cfg.AnalogPoolSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start analog pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
