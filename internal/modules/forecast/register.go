package forecast

import (
	"log/slog"
	"net/http"

	"github.com/nolangormley/chore-chart/internal/config"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/cache"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/controller"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/location"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/provider"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/recommend"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/service"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type Feature struct {
	Service *service.Service
	Latest  *location.Latest
}

// NewFeature builds the forecast pipeline. Device reports take precedence over
// the configured home coordinate. publisher may be nil.
func NewFeature(cfg config.Config, logger *slog.Logger, publisher service.Publisher) *Feature {
	nws := provider.NewNWS(provider.NWSOptions{
		BaseURL:    cfg.ProviderBaseURL,
		UserAgent:  cfg.ProviderUserAgent,
		Timeout:    cfg.ProviderTimeout,
		MaxPeriods: cfg.ProviderMaxPeriods,
		Logger:     logger,
	})

	var home *types.Coordinate
	if cfg.HomeLat != nil && cfg.HomeLon != nil {
		home = &types.Coordinate{Lat: *cfg.HomeLat, Lon: *cfg.HomeLon}
	}
	latest := location.NewLatest(cfg.LocationMaxAge)

	svc := service.NewService(service.Options{
		Provider:         provider.NewRateLimited(nws, cfg.ProviderRPS, cfg.ProviderBurst),
		Cache:            cache.New(cfg.CacheTTL),
		Locator:          location.Chain{latest, location.NewStatic(home)},
		Engine:           recommend.NewEngine(cfg.RecommendThreshold, cfg.RecommendWindow),
		Publisher:        publisher,
		Display:          cfg.DisplayLocation,
		FetchTimeout:     cfg.ProviderTimeout,
		PrefetchInterval: cfg.PrefetchInterval,
		Logger:           logger,
	})
	return &Feature{Service: svc, Latest: latest}
}

func RegisterFeature(mux *http.ServeMux, f *Feature) {
	forecastController := controller.NewForecastController(f.Service)
	forecastController.RegisterRoutes(mux)
}
