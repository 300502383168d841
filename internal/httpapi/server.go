package httpapi

import (
	"net/http"
	"time"

	"github.com/nolangormley/chore-chart/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux),
		ReadHeaderTimeout: 5 * time.Second,
		// Leaves room for a full provider round trip behind /api/v1/recommendation.
		WriteTimeout: cfg.ProviderTimeout + 10*time.Second,
	}
}
