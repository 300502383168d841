// Package recommend picks the best hour for an outdoor chore from an hourly forecast.
package recommend

import (
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

const (
	DefaultThreshold = 60.0
	DefaultWindow    = 12
)

type Engine struct {
	// Threshold splits cold from warm, on the same scale as the input temperatures.
	Threshold float64
	// Window is how many leading periods feed the average.
	Window int
}

func NewEngine(threshold float64, window int) Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	return Engine{Threshold: threshold, Window: window}
}

// Recommend returns the warmest daytime period when the near-term average is
// below the threshold and the coolest daytime period otherwise. It falls back
// to all periods when none are daytime. Ties go to the earliest period.
func (e Engine) Recommend(periods []types.Period) (types.Recommendation, error) {
	if len(periods) == 0 {
		return types.Recommendation{}, types.ErrInsufficientData
	}

	avg := average(periods, e.window())
	cold := avg < e.Threshold

	daytime := make([]types.Period, 0, len(periods))
	for _, p := range periods {
		if p.IsDaytime {
			daytime = append(daytime, p)
		}
	}

	var (
		best   types.Period
		reason types.Reason
	)
	switch {
	case cold && len(daytime) > 0:
		best, reason = warmest(daytime), types.ReasonWarmestDaytime
	case cold:
		best, reason = warmest(periods), types.ReasonWarmestAny
	case len(daytime) > 0:
		best, reason = coolest(daytime), types.ReasonCoolestDaytime
	default:
		best, reason = coolest(periods), types.ReasonCoolestAny
	}

	return types.Recommendation{
		Period:             best,
		Reason:             reason,
		AverageTemperature: avg,
		Cold:               cold,
	}, nil
}

func (e Engine) window() int {
	if e.Window <= 0 {
		return DefaultWindow
	}
	return e.Window
}

func average(periods []types.Period, window int) float64 {
	n := min(window, len(periods))
	sum := 0
	for _, p := range periods[:n] {
		sum += p.Temperature
	}
	return float64(sum) / float64(n)
}

func warmest(periods []types.Period) types.Period {
	best := periods[0]
	for _, p := range periods[1:] {
		if p.Temperature > best.Temperature {
			best = p
		}
	}
	return best
}

func coolest(periods []types.Period) types.Period {
	best := periods[0]
	for _, p := range periods[1:] {
		if p.Temperature < best.Temperature {
			best = p
		}
	}
	return best
}
