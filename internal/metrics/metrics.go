// Package metrics exposes prometheus counters for the engine and a small
// side HTTP server serving /metrics and /healthz, kept off the public API
// port.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsPlaced counts successfully recorded bets.
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memebet_bets_placed_total",
		Help: "Number of bets accepted and recorded.",
	})

	// BetFailures counts failed placements by failure stage.
	BetFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memebet_bet_failures_total",
		Help: "Number of failed bet placements, labeled by stage.",
	}, []string{"stage"})

	// FeedEvents counts synthetic activity events emitted by the generator.
	FeedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memebet_feed_events_total",
		Help: "Number of synthetic activity events generated.",
	})

	// LeaderboardRefreshes counts wholesale leaderboard recomputations.
	LeaderboardRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memebet_leaderboard_refreshes_total",
		Help: "Number of leaderboard aggregation passes.",
	})
)

// HealthFunc reports readiness of a downstream dependency.
type HealthFunc func(ctx context.Context) error

// StartServer runs a lightweight HTTP server for /metrics and /healthz in a
// goroutine and returns it so the caller can shut it down.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "unhealthy: %v", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
