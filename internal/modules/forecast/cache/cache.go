// Package cache holds the most recent hourly forecast in a single slot.
package cache

import (
	"sync"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

const DefaultTTL = time.Hour

// ForecastCache keeps exactly one forecast. Every Set overwrites it wholesale.
type ForecastCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	periods    []types.Period
	fetchedAt  time.Time
	coordinate types.Coordinate
	filled     bool
}

// Snapshot describes the slot without handing out the periods.
type Snapshot struct {
	Filled     bool             `json:"filled"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Coordinate types.Coordinate `json:"coordinate"`
	Periods    int              `json:"periods"`
}

func New(ttl time.Duration) *ForecastCache {
	return &ForecastCache{ttl: ttl}
}

// Get returns a copy of the cached periods while now-fetchedAt < ttl.
func (c *ForecastCache) Get(now time.Time) ([]types.Period, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.freshLocked(now) {
		return nil, false
	}
	out := make([]types.Period, len(c.periods))
	copy(out, c.periods)
	return out, true
}

// GetFor is Get restricted to a slot fetched for the same coordinate.
func (c *ForecastCache) GetFor(coord types.Coordinate, now time.Time) ([]types.Period, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.freshLocked(now) || c.coordinate.Key() != coord.Key() {
		return nil, time.Time{}, false
	}
	out := make([]types.Period, len(c.periods))
	copy(out, c.periods)
	return out, c.fetchedAt, true
}

func (c *ForecastCache) Set(periods []types.Period, now time.Time) {
	c.SetFor(c.Snapshot().Coordinate, periods, now)
}

func (c *ForecastCache) SetFor(coord types.Coordinate, periods []types.Period, now time.Time) {
	stored := make([]types.Period, len(periods))
	copy(stored, periods)

	c.mu.Lock()
	c.periods = stored
	c.fetchedAt = now
	c.coordinate = coord
	c.filled = true
	c.mu.Unlock()
}

func (c *ForecastCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Filled:     c.filled,
		FetchedAt:  c.fetchedAt,
		Coordinate: c.coordinate,
		Periods:    len(c.periods),
	}
}

// Fresh reports whether Get(now) would hit.
func (c *ForecastCache) Fresh(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freshLocked(now)
}

func (c *ForecastCache) freshLocked(now time.Time) bool {
	return c.filled && c.ttl > 0 && now.Sub(c.fetchedAt) < c.ttl
}
