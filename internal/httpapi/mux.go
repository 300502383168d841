package httpapi

import (
	"net/http"
)

// NewMux registers /healthz. mqtt may be nil when messaging is disabled.
func NewMux(source HealthSource, mqtt ConnectionState) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, source, mqtt)
	return mux
}
