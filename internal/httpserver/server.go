// Package httpserver exposes health and Prometheus metrics endpoints.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	healthTimeout     = 2 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter returns a router serving GET /health and GET /metrics.
func NewRouter(store Pinger, logger *slog.Logger) *mux.Router {
	log := logger.With("component", "http")

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.WarnContext(ctx, "Health check failed", "error", err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			log.DebugContext(ctx, "Failed to write health response", "error", err)
		}
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// New returns an http.Server listening on addr with the observability router.
func New(addr string, store Pinger, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(store, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
