package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/quote-stream/internal/connection"
	"github.com/rickgao/quote-stream/internal/router"
	"github.com/rickgao/quote-stream/internal/writer"
)

// newHTTPHandler serves metrics plus a JSON health report. pool may be nil
// when the postgres sink is disabled.
func newHTTPHandler(
	metricsPath string,
	reg *prometheus.Registry,
	session *connection.Session,
	rt router.Router,
	writers []*writer.BatchWriter,
	pool *pgxpool.Pool,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Stream session
		state := session.State()
		health.Components["session"] = map[string]interface{}{
			"state":      state.String(),
			"subscribed": len(session.Subscribed()),
		}
		if state != connection.StateOpen {
			health.Status = "degraded"
		}

		// Database
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		stats := rt.Stats()
		health.Components["router"] = map[string]interface{}{
			"received": stats.QuotesReceived,
			"routed":   stats.QuotesRouted,
			"dropped":  stats.Dropped,
		}

		ws := make(map[string]writer.WriterMetrics, len(writers))
		for _, wr := range writers {
			ws[wr.Name()] = wr.Stats()
		}
		health.Components["writers"] = ws

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
