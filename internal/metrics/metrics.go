// Package metrics exposes Prometheus collectors for solve sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/mastermind/internal/game"
)

// Solve modes used as the "mode" label.
const (
	ModeSecret      = "secret"
	ModeInteractive = "interactive"
	ModeSimulation  = "simulation"
)

var (
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mastermind",
		Name:      "solves_total",
		Help:      "Finished solve sessions by mode and terminal state.",
	}, []string{"mode", "state"})

	solveAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mastermind",
		Name:      "solve_attempts",
		Help:      "Attempts used by finished solve sessions.",
		Buckets:   prometheus.LinearBuckets(1, 1, game.DefaultMaxAttempts),
	}, []string{"mode"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mastermind",
		Name:      "sessions_active",
		Help:      "Interactive sessions currently waiting for feedback.",
	})
)

// ObserveResult records a terminal session outcome.
func ObserveResult(mode string, r game.Result) {
	solvesTotal.WithLabelValues(mode, r.State.String()).Inc()
	solveAttempts.WithLabelValues(mode).Observe(float64(r.Attempts))
}

// SessionStarted and SessionEnded track interactive sessions in flight.
func SessionStarted() { sessionsActive.Inc() }

func SessionEnded() { sessionsActive.Dec() }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
