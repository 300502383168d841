// Package location resolves where the household is so a forecast can be fetched.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type Source interface {
	Locate(ctx context.Context) (types.Coordinate, error)
}

// Static always answers with a configured coordinate.
type Static struct {
	coord *types.Coordinate
}

// NewStatic returns a source that denies when coord is nil.
func NewStatic(coord *types.Coordinate) *Static {
	return &Static{coord: coord}
}

func (s *Static) Locate(ctx context.Context) (types.Coordinate, error) {
	if s.coord == nil {
		return types.Coordinate{}, fmt.Errorf("no home coordinate configured: %w", types.ErrLocationDenied)
	}
	return *s.coord, nil
}

// Latest remembers the most recent coordinate reported by a device.
type Latest struct {
	mu       sync.RWMutex
	coord    types.Coordinate
	deviceID string
	at       time.Time
	have     bool

	maxAge time.Duration
	now    func() time.Time
}

// NewLatest returns a source whose reports expire after maxAge. A zero maxAge never expires.
func NewLatest(maxAge time.Duration) *Latest {
	return &Latest{maxAge: maxAge, now: time.Now}
}

// Update records a report. Reports older than the current one are ignored.
func (l *Latest) Update(report types.LocationReport) error {
	if report.Lat == nil || report.Lon == nil {
		return errors.New("lat and lon are required")
	}
	coord := types.Coordinate{Lat: *report.Lat, Lon: *report.Lon}
	if err := coord.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.have && report.Timestamp.Before(l.at) {
		return nil
	}
	l.coord = coord
	l.deviceID = report.DeviceID
	l.at = report.Timestamp
	l.have = true
	return nil
}

func (l *Latest) Locate(ctx context.Context) (types.Coordinate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.have {
		return types.Coordinate{}, fmt.Errorf("no device location reported: %w", types.ErrLocationDenied)
	}
	if l.maxAge > 0 && l.now().Sub(l.at) > l.maxAge {
		return types.Coordinate{}, fmt.Errorf("device %s location is stale (reported %s): %w",
			l.deviceID, l.at.Format(time.RFC3339), types.ErrLocationDenied)
	}
	return l.coord, nil
}

// Chain asks each source in turn and returns the first coordinate found.
type Chain []Source

func (c Chain) Locate(ctx context.Context) (types.Coordinate, error) {
	var errs []error
	for _, s := range c {
		coord, err := s.Locate(ctx)
		if err == nil {
			return coord, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Coordinate{}, ctxErr
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return types.Coordinate{}, fmt.Errorf("no location sources: %w", types.ErrLocationDenied)
	}
	return types.Coordinate{}, fmt.Errorf("%w: %w", types.ErrLocationDenied, errors.Join(errs...))
}
