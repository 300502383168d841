package httpapi

import (
	"net/http"

	"github.com/nolangormley/chore-chart/internal/utils"
)

// HealthSource reports the state of the dependencies shown on /healthz.
type HealthSource interface {
	CacheFresh() bool
}

// ConnectionState is satisfied by the MQTT client.
type ConnectionState interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	source HealthSource
	mqtt   ConnectionState
}

func NewHealthchecker(source HealthSource, mqtt ConnectionState) healthchecker {
	return &healthcheckerImpl{source: source, mqtt: mqtt}
}

// handleHealthz answers 200 even when the forecast is stale or the broker is down.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"forecastCached": h.source != nil && h.source.CacheFresh(),
		"mqttConnected":  h.mqtt != nil && h.mqtt.IsConnected(),
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, source HealthSource, mqtt ConnectionState) {
	healthchecker := NewHealthchecker(source, mqtt)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
