// Command server runs the district forecast query service: free-text
// weather questions in, normalized forecasts plus explanations out.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/weatherwise/district-forecast/internal/adapter/gemini"
	"github.com/weatherwise/district-forecast/internal/adapter/httpapi"
	kafkaadapter "github.com/weatherwise/district-forecast/internal/adapter/kafka"
	"github.com/weatherwise/district-forecast/internal/adapter/mapbox"
	"github.com/weatherwise/district-forecast/internal/config"
	"github.com/weatherwise/district-forecast/internal/domain"
	"github.com/weatherwise/district-forecast/internal/explain"
	"github.com/weatherwise/district-forecast/internal/gazetteer"
	"github.com/weatherwise/district-forecast/internal/interpret"
	"github.com/weatherwise/district-forecast/internal/observability"
	"github.com/weatherwise/district-forecast/internal/pipeline"
	"github.com/weatherwise/district-forecast/internal/retrieve"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	gaz, err := gazetteer.Load()
	if err != nil {
		logger.Error("failed to load gazetteer", "error", err)
		os.Exit(1)
	}
	logger.Info("gazetteer loaded", "districts", gaz.Len())

	// Fetcher chain: HTTP with timeout, rate-limited toward the portal,
	// circuit-broken so an outage fails fast.
	var fetcher retrieve.Fetcher = retrieve.NewHTTPFetcher(cfg.FetchTimeout)
	fetcher = retrieve.NewRateLimitedFetcher(fetcher, cfg.FetchRPS, cfg.FetchBurst)
	fetcher = retrieve.NewBreakerFetcher(fetcher)

	// Optional geocoding enrichment (enabled by MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled() {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Optional explanation polishing (enabled by GEMINI_API_KEY).
	var polisher domain.Polisher
	if cfg.GeminiEnabled() {
		polisher = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, logger)
		logger.Info("gemini polishing enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("gemini polishing disabled")
	}

	// Optional resolved-query events (enabled by KAFKA_BROKERS).
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	interpreter := interpret.New(gaz, cfg.DefaultHorizon, cfg.MaxHorizon)
	retriever := retrieve.New(fetcher, cfg.BMDBaseURL, logger, metrics)
	composer := explain.New(polisher, logger, metrics)

	resolver := pipeline.New(interpreter, retriever, composer, publisher, geocoder, logger, metrics, gaz.Len())

	srv := httpapi.NewServer(cfg.HTTPAddr, resolver, resolver, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
