package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	ProviderBaseURL    string
	ProviderUserAgent  string
	ProviderTimeout    time.Duration
	ProviderMaxPeriods int
	ProviderRPS        float64
	ProviderBurst      int

	CacheTTL time.Duration

	// RecommendThreshold is compared with the mean temperature in the provider's unit.
	RecommendThreshold float64
	RecommendWindow    int

	// DisplayLocation is nil when DISPLAY_TZ is unset; periods then keep their own offset.
	DisplayLocation *time.Location

	// HomeLat and HomeLon are both set or both nil.
	HomeLat          *float64
	HomeLon          *float64
	LocationMaxAge   time.Duration
	PrefetchInterval time.Duration

	MQTTBroker              string
	MQTTPort                int
	MQTTClientID            string
	MQTTLocationTopic       string
	MQTTRecommendationTopic string
}

func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                  appEnv,
		LogLevel:                level,
		HTTPAddr:                env("HTTP_ADDR", ":8080"),
		ProviderBaseURL:         env("PROVIDER_BASE_URL", "https://api.weather.gov"),
		ProviderUserAgent:       env("PROVIDER_USER_AGENT", "chore-chart (admin@localhost)"),
		MQTTBroker:              env("MQTT_BROKER", ""),
		MQTTClientID:            env("MQTT_CLIENT_ID", "chore-chart-server"),
		MQTTLocationTopic:       env("MQTT_LOCATION_TOPIC", "chore-chart/location"),
		MQTTRecommendationTopic: env("MQTT_RECOMMENDATION_TOPIC", "chore-chart/recommendation"),
	}

	if cfg.ProviderTimeout, err = durationEnv("PROVIDER_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT %q: must be > 0", env("PROVIDER_TIMEOUT", "10s"))
	}
	if cfg.ProviderMaxPeriods, err = intEnv("PROVIDER_MAX_PERIODS", "48"); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxPeriods <= 0 {
		return Config{}, fmt.Errorf("invalid PROVIDER_MAX_PERIODS %d: must be > 0", cfg.ProviderMaxPeriods)
	}
	if cfg.ProviderRPS, err = floatEnv("PROVIDER_RPS", "1"); err != nil {
		return Config{}, err
	}
	if cfg.ProviderRPS <= 0 {
		return Config{}, fmt.Errorf("invalid PROVIDER_RPS %v: must be > 0", cfg.ProviderRPS)
	}
	if cfg.ProviderBurst, err = intEnv("PROVIDER_BURST", "2"); err != nil {
		return Config{}, err
	}

	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", "1h"); err != nil {
		return Config{}, err
	}

	if cfg.RecommendThreshold, err = floatEnv("RECOMMEND_THRESHOLD", "60"); err != nil {
		return Config{}, err
	}
	if cfg.RecommendWindow, err = intEnv("RECOMMEND_WINDOW", "12"); err != nil {
		return Config{}, err
	}
	if cfg.RecommendWindow <= 0 {
		return Config{}, fmt.Errorf("invalid RECOMMEND_WINDOW %d: must be > 0", cfg.RecommendWindow)
	}

	if tz := env("DISPLAY_TZ", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DISPLAY_TZ %q: %w", tz, err)
		}
		cfg.DisplayLocation = loc
	}

	if cfg.HomeLat, cfg.HomeLon, err = parseHome(env("HOME_LAT", ""), env("HOME_LON", "")); err != nil {
		return Config{}, err
	}
	if cfg.LocationMaxAge, err = durationEnv("LOCATION_MAX_AGE", "6h"); err != nil {
		return Config{}, err
	}
	if cfg.PrefetchInterval, err = durationEnv("PREFETCH_INTERVAL", "30m"); err != nil {
		return Config{}, err
	}

	if cfg.MQTTPort, err = intEnv("MQTT_PORT", "1883"); err != nil {
		return Config{}, err
	}
	if cfg.MQTTPort <= 0 || cfg.MQTTPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d: must be 1-65535", cfg.MQTTPort)
	}

	return cfg, nil
}

func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key, def string) (int, error) {
	s := env(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

// floatEnv accepts only finite values.
func floatEnv(key, def string) (float64, error) {
	s := env(key, def)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", key, s)
	}
	return f, nil
}

func durationEnv(key, def string) (time.Duration, error) {
	s := env(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseHome(latStr, lonStr string) (*float64, *float64, error) {
	if latStr == "" && lonStr == "" {
		return nil, nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, nil, fmt.Errorf("HOME_LAT and HOME_LON must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid HOME_LAT %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid HOME_LON %q: %w", lonStr, err)
	}
	if err := (types.Coordinate{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid HOME_LAT/HOME_LON %q,%q: %w", latStr, lonStr, err)
	}
	return &lat, &lon, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
