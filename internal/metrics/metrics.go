// Package metrics defines the client-side Prometheus metrics for bookshelf.
// Metrics are registered on the default registry at init time and are only
// exposed over HTTP when Serve is started.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "bookshelf"

// APIRequestsTotal counts backend calls.
// Labels:
//   - endpoint: request path with numeric IDs collapsed (e.g. "/books/:id/comments/")
//   - code: HTTP status code, or "error" when no response was received
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of backend API requests, by endpoint and status code.",
	},
	[]string{"method", "endpoint", "code"},
)

// APIRequestDuration measures round-trip latency of backend calls.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Round-trip duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "endpoint"},
)

// SessionExpiredTotal counts sessions cleared because the backend answered 401.
var SessionExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expired_total",
		Help:      "Total number of sessions ended by an unauthorized response.",
	},
)

// ObserveRequest records one backend call. code <= 0 means the request
// failed before a response arrived.
func ObserveRequest(method, path string, code int, d time.Duration) {
	endpoint := Endpoint(path)
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	APIRequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// Endpoint strips the query string and replaces numeric path segments with
// ":id" so that label cardinality stays bounded.
func Endpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
