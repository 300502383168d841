package types

import (
	"fmt"
	"math"
	"time"
)

// Period is one hourly forecast slot as reported by the provider.
type Period struct {
	StartTime       time.Time `json:"startTime"`
	IsDaytime       bool      `json:"isDaytime"`
	Temperature     int       `json:"temperature"`
	TemperatureUnit string    `json:"temperatureUnit"`
	ShortForecast   string    `json:"shortForecast"`
}

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return fmt.Errorf("lat and lon must be numbers, got %f,%f", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("lat out of range: %f (must be -90..90)", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("lon out of range: %f (must be -180..180)", c.Lon)
	}
	return nil
}

// Key rounds to four decimals, the precision the points endpoint accepts.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

type Reason string

const (
	ReasonWarmestDaytime Reason = "WarmestDaytime"
	ReasonWarmestAny     Reason = "WarmestAny"
	ReasonCoolestDaytime Reason = "CoolestDaytime"
	ReasonCoolestAny     Reason = "CoolestAny"
)

// Label is the short human text shown next to a recommended time.
func (r Reason) Label() string {
	switch r {
	case ReasonWarmestDaytime:
		return "Warmest time"
	case ReasonWarmestAny:
		return "Warmest time (night)"
	case ReasonCoolestDaytime:
		return "Coolest daytime"
	case ReasonCoolestAny:
		return "Coolest time"
	default:
		return string(r)
	}
}

type Recommendation struct {
	Period             Period  `json:"period"`
	Reason             Reason  `json:"reason"`
	AverageTemperature float64 `json:"averageNext12hTemperature"`
	// Cold reports which branch of the policy applied.
	Cold bool `json:"cold"`
}

// LocationReport is a device geolocation update received over MQTT.
type LocationReport struct {
	DeviceID  string    `json:"deviceId"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// Place tells whether a chore happens indoors or outdoors.
type Place string

const (
	PlaceInside  Place = "Inside"
	PlaceOutside Place = "Outside"
)
