package provider

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

// RateLimited wraps a Provider with a token bucket.
type RateLimited struct {
	provider Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimited allows rps fetches per second (fractional values allowed) with the given burst.
func NewRateLimited(p Provider, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		provider: p,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [rate limited]", p.Name()),
	}
}

func (r *RateLimited) FetchHourly(ctx context.Context, coord types.Coordinate) ([]types.Period, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{
			Provider: r.provider.Name(),
			Stage:    StageWait,
			Err:      fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}
	return r.provider.FetchHourly(ctx, coord)
}

func (r *RateLimited) Name() string {
	return r.name
}

var _ Provider = (*RateLimited)(nil)
