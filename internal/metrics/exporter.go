package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-antiraid/internal/logging"
)

// HealthFunc reports per-component health, keyed by component name.
type HealthFunc func() map[string]bool

// MetricsExporter serves /metrics and /healthz.
type MetricsExporter struct {
	server *http.Server
	addr   string
	health HealthFunc
}

func NewMetricsExporter(addr string) *MetricsExporter {
	me := &MetricsExporter{addr: addr}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", me.serveHealth)

	me.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return me
}

// ReportHealth lists component status on /healthz. Call before Start.
func (me *MetricsExporter) ReportHealth(fn HealthFunc) {
	me.health = fn
}

// serveHealth always answers 200 while the process serves; a stale component
// is listed, not failed, since quiet guilds go minutes without events.
func (me *MetricsExporter) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
	if me.health == nil {
		return
	}

	status := me.health()
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := "healthy"
		if !status[name] {
			state = "stale"
		}
		fmt.Fprintf(w, "%s: %s\n", name, state)
	}
}

// Start binds the listener synchronously so bind errors surface to the
// caller, then serves in the background.
func (me *MetricsExporter) Start() error {
	ln, err := net.Listen("tcp", me.addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics on %s: %w", me.addr, err)
	}
	me.addr = ln.Addr().String()

	go func() {
		if err := me.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server stopped: %v", err)
		}
	}()

	logging.Info("Metrics listening on %s", me.addr)
	return nil
}

// Addr is the bound address once Start has returned.
func (me *MetricsExporter) Addr() string {
	return me.addr
}

func (me *MetricsExporter) Shutdown(ctx context.Context) error {
	return me.server.Shutdown(ctx)
}
