package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

// parseCoordinateQuery returns nil when neither lat nor lon is given.
func parseCoordinateQuery(r *http.Request) (*types.Coordinate, error) {
	q := r.URL.Query()
	latStr, lonStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("'lat' and 'lon' must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid 'lat' (expected decimal degrees)")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errors.New("invalid 'lon' (expected decimal degrees)")
	}

	coord := types.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	return &coord, nil
}

// parsePlace defaults to Outside, the only place that consults the forecast.
func parsePlace(r *http.Request) (types.Place, error) {
	s := strings.TrimSpace(r.URL.Query().Get("place"))
	switch strings.ToLower(s) {
	case "", "outside":
		return types.PlaceOutside, nil
	case "inside":
		return types.PlaceInside, nil
	default:
		return "", fmt.Errorf("invalid 'place' %q (allowed: Inside, Outside)", s)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrLocationDenied):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	// A provider timeout is also a FetchError; report it as a timeout.
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
