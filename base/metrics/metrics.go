// Package metrics exposes daemon counters in prometheus format.
//
// Metrics are collected unconditionally, as they are cheap. The http
// endpoint is only started when an address is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	vm "github.com/VictoriaMetrics/metrics"

	"github.com/urngd/urngd/service/mgr"
)

// Metrics is the metrics module. It serves all metrics registered with
// the default set of github.com/VictoriaMetrics/metrics.
type Metrics struct {
	mgr *mgr.Manager

	listenAddr string
	server     *http.Server
}

// New returns a new metrics module. With an empty listen address the
// module collects but does not serve.
func New(listenAddr string) *Metrics {
	return &Metrics{
		listenAddr: listenAddr,
	}
}

// Start starts the metrics endpoint, if configured.
func (m *Metrics) Start(manager *mgr.Manager) error {
	m.mgr = manager
	if m.listenAddr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		vm.WritePrometheus(w, true)
	})
	m.server = &http.Server{
		Addr:              m.listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	manager.Go("metrics server", func(w *mgr.WorkerCtx) error {
		err := m.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	manager.Info("metrics endpoint started", "addr", m.listenAddr)
	return nil
}

// Stop stops the metrics endpoint.
func (m *Metrics) Stop(manager *mgr.Manager) error {
	if m.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}

// NewCounter registers and returns a new counter with the given
// prometheus name and labels.
func NewCounter(name string) *vm.Counter {
	return vm.GetOrCreateCounter(name)
}
