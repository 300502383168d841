package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

const (
	DefaultBaseURL    = "https://api.weather.gov"
	DefaultMaxPeriods = 48
	DefaultTimeout    = 10 * time.Second
)

type NWSOptions struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxPeriods int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NWS resolves a coordinate to its hourly forecast URL, then fetches that forecast.
type NWS struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	maxPeriods int
	client     *http.Client
	logger     *slog.Logger
}

type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type hourlyResponse struct {
	Properties struct {
		Periods []struct {
			StartTime       time.Time `json:"startTime"`
			IsDaytime       bool      `json:"isDaytime"`
			Temperature     int       `json:"temperature"`
			TemperatureUnit string    `json:"temperatureUnit"`
			ShortForecast   string    `json:"shortForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

func NewNWS(opts NWSOptions) *NWS {
	n := &NWS{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		maxPeriods: opts.MaxPeriods,
		client:     opts.HTTPClient,
		logger:     opts.Logger,
	}
	if n.baseURL == "" {
		n.baseURL = DefaultBaseURL
	}
	if n.timeout <= 0 {
		n.timeout = DefaultTimeout
	}
	if n.maxPeriods <= 0 {
		n.maxPeriods = DefaultMaxPeriods
	}
	if n.client == nil {
		n.client = &http.Client{}
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

func (n *NWS) Name() string {
	return "nws"
}

func (n *NWS) FetchHourly(ctx context.Context, coord types.Coordinate) ([]types.Period, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	pointURL := fmt.Sprintf("%s/points/%s,%s", n.baseURL,
		strconv.FormatFloat(coord.Lat, 'f', 4, 64),
		strconv.FormatFloat(coord.Lon, 'f', 4, 64),
	)

	var points pointsResponse
	if err := n.getJSON(ctx, StagePoint, pointURL, &points); err != nil {
		return nil, err
	}
	hourlyURL := points.Properties.ForecastHourly
	if hourlyURL == "" {
		return nil, n.fail(StagePoint, 0, errors.New("response has no forecastHourly url"))
	}

	var hourly hourlyResponse
	if err := n.getJSON(ctx, StageForecast, hourlyURL, &hourly); err != nil {
		return nil, err
	}

	raw := hourly.Properties.Periods
	if len(raw) > n.maxPeriods {
		raw = raw[:n.maxPeriods]
	}
	periods := make([]types.Period, 0, len(raw))
	for _, p := range raw {
		periods = append(periods, types.Period{
			StartTime:       p.StartTime,
			IsDaytime:       p.IsDaytime,
			Temperature:     p.Temperature,
			TemperatureUnit: p.TemperatureUnit,
			ShortForecast:   p.ShortForecast,
		})
	}

	n.logger.Debug("fetched hourly forecast",
		"provider", n.Name(),
		"coordinate", coord.Key(),
		"periods", len(periods),
	)
	return periods, nil
}

func (n *NWS) getJSON(ctx context.Context, stage Stage, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return n.fail(stage, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/geo+json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return n.fail(stage, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return n.fail(stage, resp.StatusCode, fmt.Errorf("body: %s", strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return n.fail(StageDecode, 0, fmt.Errorf("%s response: %w", stage, err))
	}
	return nil
}

func (n *NWS) fail(stage Stage, status int, err error) error {
	return &FetchError{Provider: n.Name(), Stage: stage, StatusCode: status, Err: err}
}

var _ Provider = (*NWS)(nil)
