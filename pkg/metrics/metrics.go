// Package metrics exposes Prometheus counters for the sorting pipeline.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/sorter"
	"github.com/0xmhha/filesorter/pkg/watcher"
)

const shutdownTimeout = 5 * time.Second

// Metrics holds the pipeline counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	moves           *prometheus.CounterVec
	transportErrors prometheus.Counter
}

// New creates the counters and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filesorter_events_total",
				Help: "Debounced change events received, by kind",
			},
			[]string{"kind"},
		),
		moves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filesorter_moves_total",
				Help: "Sort attempts, by outcome",
			},
			[]string{"outcome"},
		),
		transportErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filesorter_transport_errors_total",
				Help: "Errors reported by the notification subscription",
			},
		),
	}

	// Pre-create every outcome so dashboards see zeros.
	for _, o := range sorter.Outcomes {
		m.moves.WithLabelValues(string(o))
	}
	return m
}

// RecordEvent counts one change event.
func (m *Metrics) RecordEvent(kind watcher.Kind) {
	m.events.WithLabelValues(kind.String()).Inc()
}

// RecordResult counts one sort attempt.
func (m *Metrics) RecordResult(res sorter.Result) {
	m.moves.WithLabelValues(string(res.Outcome)).Inc()
}

// RecordTransportError counts one subscription error.
func (m *Metrics) RecordTransportError() {
	m.transportErrors.Inc()
}

// Registry returns the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. It returns nil
// after a clean shutdown.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	log.Debug("metrics server stopped")
	return nil
}
