package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/incident-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/incident-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/incident-map-service/internal/adapter/sheet"
	"github.com/couchcryptid/incident-map-service/internal/config"
	"github.com/couchcryptid/incident-map-service/internal/observability"
	"github.com/couchcryptid/incident-map-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "incident-map")
	metrics := observability.NewMetrics()

	source, err := sheet.NewSource(cfg.FeedURL, cfg.FeedTimeout, logger)
	if err != nil {
		logger.Error("failed to create feed source", "error", err)
		os.Exit(1)
	}
	cached := sheet.NewCachedSource(source, cfg.FeedCacheTTL, nil)
	logger.Info("feed source configured", "url", cfg.FeedURL, "cache_ttl", cfg.FeedCacheTTL)

	var opts []pipeline.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(cached, logger, metrics, cfg.RefreshInterval, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.MapSettings{
		Title:             "Live-Karte der Vorfälle",
		CenterLat:         config.MapCenterLat,
		CenterLon:         config.MapCenterLon,
		Zoom:              config.MapZoom,
		DensityResolution: cfg.DensityResolution,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
