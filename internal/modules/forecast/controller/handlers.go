package controller

import (
	"log/slog"
	"net/http"

	"github.com/nolangormley/chore-chart/internal/utils"
)

func (c *forecastControllerImpl) handleForecast(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinateQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	fc, err := c.service.Forecast(r.Context(), coord)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, fc)
}

func (c *forecastControllerImpl) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinateQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := c.service.Recommend(r.Context(), coord)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rec)
}

// handleSuggestion always answers 200: the form stays usable without weather.
func (c *forecastControllerImpl) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	place, err := parsePlace(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	coord, err := parseCoordinateQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, c.service.Suggest(r.Context(), place, coord))
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Warn("forecast request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	utils.WriteError(w, status, err.Error())
}
