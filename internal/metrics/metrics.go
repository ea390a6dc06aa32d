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
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partpricer_lookups_total",
			Help: "Total number of price lookups executed",
		},
		[]string{"outcome"}, // priced, not_found, error
	)

	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "partpricer_lookup_duration_seconds",
			Help:    "Duration of price lookups in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	ChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partpricer_challenges_total",
			Help: "Total number of lookups blocked by bot protection",
		},
		[]string{"source"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partpricer_uploads_total",
			Help: "Total number of CSV objects uploaded",
		},
		[]string{"key"},
	)
)

// RecordLookup updates the lookup metrics for a single fetch.
func RecordLookup(outcome string, duration time.Duration, challengeSrc string) {
	LookupsTotal.WithLabelValues(outcome).Inc()
	LookupDuration.Observe(duration.Seconds())
	if challengeSrc != "" {
		ChallengesTotal.WithLabelValues(challengeSrc).Inc()
	}
}

// RecordUpload counts an object upload by storage key.
func RecordUpload(key string) {
	UploadsTotal.WithLabelValues(key).Inc()
}

// Server exposes /metrics over HTTP while a run is in flight.
type Server struct {
	srv *http.Server
}

// Start begins listening on the given port.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
