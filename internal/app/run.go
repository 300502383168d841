package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nolangormley/chore-chart/internal/config"
	"github.com/nolangormley/chore-chart/internal/httpapi"
	"github.com/nolangormley/chore-chart/internal/modules/forecast"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/service"
	"github.com/nolangormley/chore-chart/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"providerBaseURL", cfg.ProviderBaseURL,
		"providerTimeout", cfg.ProviderTimeout,
		"cacheTTL", cfg.CacheTTL,
		"recommendThreshold", cfg.RecommendThreshold,
		"recommendWindow", cfg.RecommendWindow,
		"homeConfigured", cfg.HomeLat != nil,
		"prefetchInterval", cfg.PrefetchInterval,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttLocationTopic", cfg.MQTTLocationTopic,
	)

	var (
		mqttClient *mqtt.Client
		publisher  service.Publisher
		connState  httpapi.ConnectionState
	)
	if cfg.MQTTEnabled() {
		mqttClient = mqtt.NewClient(cfg, logger)
		publisher = forecast.NewRecommendationPublisher(mqttClient, cfg.MQTTRecommendationTopic)
		connState = mqttClient
	} else {
		logger.Info("mqtt disabled (MQTT_BROKER not set)")
	}

	feature := forecast.NewFeature(cfg, logger, publisher)

	// The location handler must be set before Connect so OnConnect can subscribe
	// ahead of any retained message the broker sends after CONNACK.
	if mqttClient != nil {
		forecast.RegisterMQTTHandler(mqttClient, feature.Latest, logger)

		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := mqttClient.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	mux := httpapi.NewMux(feature.Service, connState)
	forecast.RegisterFeature(mux, feature)
	srv := httpapi.NewServer(cfg, mux)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return feature.Service.Prefetch(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if mqttClient != nil {
			logger.Info("mqtt disconnecting")
			mqttClient.Disconnect()
		}

		logger.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
