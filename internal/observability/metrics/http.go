package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	enqueueTotal   *prometheus.CounterVec
	streamedChunks *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkstash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkstash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "linkstash",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	enqueueTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkstash",
			Subsystem: "queue",
			Name:      "enqueue_total",
			Help:      "Total enqueue attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	streamedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkstash",
			Subsystem: "inference",
			Name:      "streamed_chunks",
			Help:      "Distribution of streamed chunks per inference request.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"service"},
	)

	registry.MustRegister(requestTotal, requestDuration, requestInFlight, enqueueTotal, streamedChunks)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		enqueueTotal:    enqueueTotal,
		streamedChunks:  streamedChunks,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource ids so the path label stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/categories/"):
		rest := strings.TrimPrefix(path, "/v1/categories/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/categories/{category_id}/" + rest[idx+1:]
		}
		return "/v1/categories/{category_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordEnqueue(service string, added bool) {
	outcome := "added"
	if !added {
		outcome = "duplicate"
	}
	m.enqueueTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) ObserveStreamedChunks(service string, chunks int) {
	if chunks < 0 {
		return
	}
	m.streamedChunks.WithLabelValues(service).Observe(float64(chunks))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
