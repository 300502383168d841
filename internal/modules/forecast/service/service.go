package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/cache"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/location"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/provider"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/recommend"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

const (
	NoticeLocationDenied = "Location access denied. Cannot fetch weather."
	NoticeUnavailable    = "Unable to fetch weather forecast."
	NoticeNoData         = "No forecast data available."
)

// Publisher receives each recommendation computed from a fresh fetch, once per fetch.
type Publisher interface {
	PublishRecommendation(ctx context.Context, rec RecommendationResult) error
}

type ForecastResult struct {
	Coordinate types.Coordinate `json:"coordinate"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Cached     bool             `json:"cached"`
	Provider   string           `json:"provider"`
	Periods    []types.Period   `json:"periods"`
}

type RecommendationResult struct {
	types.Recommendation
	Coordinate types.Coordinate `json:"coordinate"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Cached     bool             `json:"cached"`
	Form       Form             `json:"form"`
	Label      string           `json:"label"`
	Current    string           `json:"current"`
	Message    string           `json:"message"`
}

// Suggestion pre-fills the scheduling form. It is always usable: when no
// recommendation is available the form holds the next full hour and Notice
// says why.
type Suggestion struct {
	Place          types.Place           `json:"place"`
	Form           Form                  `json:"form"`
	Recommended    bool                  `json:"recommended"`
	Current        string                `json:"current,omitempty"`
	Message        string                `json:"message,omitempty"`
	Notice         string                `json:"notice,omitempty"`
	Recommendation *RecommendationResult `json:"recommendation,omitempty"`
}

type Options struct {
	Provider  provider.Provider
	Cache     *cache.ForecastCache
	Locator   location.Source
	Engine    recommend.Engine
	Publisher Publisher
	// Display overrides the offset carried by each period when formatting.
	Display *time.Location
	// FetchTimeout bounds one shared provider call, rate-limit wait included.
	FetchTimeout     time.Duration
	PrefetchInterval time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

type Service struct {
	provider  provider.Provider
	cache     *cache.ForecastCache
	locator   location.Source
	engine    recommend.Engine
	publisher Publisher
	display   *time.Location
	timeout   time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	group     singleflight.Group
}

func NewService(opts Options) *Service {
	s := &Service{
		provider:  opts.Provider,
		cache:     opts.Cache,
		locator:   opts.Locator,
		engine:    opts.Engine,
		publisher: opts.Publisher,
		display:   opts.Display,
		timeout:   opts.FetchTimeout,
		interval:  opts.PrefetchInterval,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.cache == nil {
		s.cache = cache.New(cache.DefaultTTL)
	}
	if s.locator == nil {
		s.locator = location.Chain{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Forecast returns the hourly forecast for coord, or for the located household
// when coord is nil. A fresh cached slot for the same coordinate is reused.
func (s *Service) Forecast(ctx context.Context, coord *types.Coordinate) (ForecastResult, error) {
	fc, _, err := s.forecast(ctx, coord)
	return fc, err
}

// forecast also reports whether this caller ran the shared fetch. Callers
// coalesced onto another caller's fetch get leader == false.
func (s *Service) forecast(ctx context.Context, coord *types.Coordinate) (ForecastResult, bool, error) {
	target, err := s.resolve(ctx, coord)
	if err != nil {
		return ForecastResult{}, false, err
	}

	if periods, fetchedAt, ok := s.cache.GetFor(target, s.now()); ok {
		return ForecastResult{
			Coordinate: target,
			FetchedAt:  fetchedAt,
			Cached:     true,
			Provider:   s.provider.Name(),
			Periods:    periods,
		}, false, nil
	}

	// Only the closure of the caller that starts the fetch ever runs.
	var ran bool
	ch := s.group.DoChan(target.Key(), func() (any, error) {
		ran = true
		// The shared fetch outlives any single caller; FetchTimeout bounds it.
		return s.fetch(context.WithoutCancel(ctx), target)
	})
	select {
	case <-ctx.Done():
		return ForecastResult{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ForecastResult{}, false, res.Err
		}
		out := res.Val.(ForecastResult)
		out.Periods = append([]types.Period(nil), out.Periods...)
		return out, ran, nil
	}
}

func (s *Service) fetch(ctx context.Context, target types.Coordinate) (ForecastResult, error) {
	if periods, fetchedAt, ok := s.cache.GetFor(target, s.now()); ok {
		return ForecastResult{Coordinate: target, FetchedAt: fetchedAt, Cached: true, Provider: s.provider.Name(), Periods: periods}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	periods, err := s.provider.FetchHourly(ctx, target)
	if err != nil {
		s.logger.Warn("forecast fetch failed",
			"provider", s.provider.Name(),
			"coordinate", target.Key(),
			"stage", provider.StageOf(err),
			"error", err,
		)
		return ForecastResult{}, err
	}

	fetchedAt := s.now()
	s.cache.SetFor(target, periods, fetchedAt)
	s.logger.Info("forecast refreshed",
		"provider", s.provider.Name(),
		"coordinate", target.Key(),
		"periods", len(periods),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ForecastResult{Coordinate: target, FetchedAt: fetchedAt, Provider: s.provider.Name(), Periods: periods}, nil
}

func (s *Service) Recommend(ctx context.Context, coord *types.Coordinate) (RecommendationResult, error) {
	fc, leader, err := s.forecast(ctx, coord)
	if err != nil {
		return RecommendationResult{}, err
	}
	rec, err := s.engine.Recommend(fc.Periods)
	if err != nil {
		return RecommendationResult{}, err
	}

	at := s.localize(rec.Period.StartTime)
	out := RecommendationResult{
		Recommendation: rec,
		Coordinate:     fc.Coordinate,
		FetchedAt:      fc.FetchedAt,
		Cached:         fc.Cached,
		Form:           FormFor(at),
		Label:          Label(at),
		Current:        Summary(fc.Periods[0]),
		Message:        Message(rec, at),
	}

	if leader && !fc.Cached && s.publisher != nil {
		if err := s.publisher.PublishRecommendation(ctx, out); err != nil {
			s.logger.Warn("publish recommendation failed", "error", err)
		}
	}
	return out, nil
}

func (s *Service) Suggest(ctx context.Context, place types.Place, coord *types.Coordinate) Suggestion {
	out := Suggestion{
		Place: place,
		Form:  FormFor(NextFullHour(s.localNow())),
	}
	if place != types.PlaceOutside {
		return out
	}

	rec, err := s.Recommend(ctx, coord)
	if err != nil {
		out.Notice = NoticeFor(err)
		s.logger.Debug("no recommendation, keeping default time", "place", place, "error", err)
		return out
	}

	out.Form = rec.Form
	out.Recommended = true
	out.Current = rec.Current
	out.Message = rec.Message
	out.Recommendation = &rec
	return out
}

// Prefetch warms the cache once, then again every interval until ctx is done.
func (s *Service) Prefetch(ctx context.Context) error {
	s.warm(ctx)
	if s.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *Service) warm(ctx context.Context) {
	rec, err := s.Recommend(ctx, nil)
	switch {
	case err == nil:
		s.logger.Info("forecast cached by background fetch", "cached", rec.Cached, "label", rec.Label)
	case errors.Is(err, types.ErrLocationDenied):
		s.logger.Debug("background fetch skipped", "error", err)
	case ctx.Err() != nil:
	default:
		s.logger.Warn("background fetch failed", "error", err)
	}
}

func (s *Service) CacheSnapshot() cache.Snapshot {
	return s.cache.Snapshot()
}

func (s *Service) CacheFresh() bool {
	return s.cache.Fresh(s.now())
}

func (s *Service) resolve(ctx context.Context, coord *types.Coordinate) (types.Coordinate, error) {
	if coord != nil {
		return *coord, nil
	}
	return s.locator.Locate(ctx)
}

func (s *Service) localize(t time.Time) time.Time {
	if s.display != nil {
		return t.In(s.display)
	}
	return t
}

func (s *Service) localNow() time.Time {
	if s.display != nil {
		return s.now().In(s.display)
	}
	return s.now()
}

// NoticeFor maps a failure to the text shown in the weather panel.
func NoticeFor(err error) string {
	switch {
	case errors.Is(err, types.ErrLocationDenied):
		return NoticeLocationDenied
	case errors.Is(err, types.ErrInsufficientData):
		return NoticeNoData
	default:
		return NoticeUnavailable
	}
}
