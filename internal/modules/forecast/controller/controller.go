package controller

import (
	"context"
	"net/http"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/service"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type ForecastService interface {
	Forecast(ctx context.Context, coord *types.Coordinate) (service.ForecastResult, error)
	Recommend(ctx context.Context, coord *types.Coordinate) (service.RecommendationResult, error)
	Suggest(ctx context.Context, place types.Place, coord *types.Coordinate) service.Suggestion
}

type ForecastController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type forecastControllerImpl struct {
	service ForecastService
}

func NewForecastController(service ForecastService) ForecastController {
	return &forecastControllerImpl{service: service}
}

func (c *forecastControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/forecast", c.handleForecast)
	mux.HandleFunc("GET /api/v1/recommendation", c.handleRecommendation)
	mux.HandleFunc("GET /api/v1/schedule/suggestion", c.handleSuggestion)
}
