// Package provider fetches hourly forecasts from upstream weather services.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

// Provider fetches an ordered hourly forecast for a coordinate.
type Provider interface {
	Name() string
	FetchHourly(ctx context.Context, coord types.Coordinate) ([]types.Period, error)
}

type Stage string

const (
	StagePoint    Stage = "point"
	StageForecast Stage = "forecast"
	StageDecode   Stage = "decode"
	StageWait     Stage = "rate-limit"
)

// FetchError reports which step of the fetch chain failed. Every FetchError
// matches types.ErrProviderUnavailable.
type FetchError struct {
	Provider   string
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Provider, e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == types.ErrProviderUnavailable
}

// StageOf returns the failing stage of err, or "" when err is not a FetchError.
func StageOf(err error) Stage {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return ""
}
