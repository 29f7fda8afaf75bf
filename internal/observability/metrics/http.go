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

	chatResponsesTotal      *prometheus.CounterVec
	chatDegradedTotal       *prometheus.CounterVec
	chatDuration            *prometheus.HistogramVec
	clarificationsTotal     *prometheus.CounterVec
	segmentationFanOut      *prometheus.HistogramVec
	retrievalHitTotal       *prometheus.CounterVec
	retrievalNoContextTotal *prometheus.CounterVec
	retrievedDocuments      *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rne",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rne",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatResponsesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "chat",
			Name:      "responses_total",
			Help:      "Total chat turns by response kind and language.",
		},
		[]string{"service", "kind", "language"},
	)
	chatDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "chat",
			Name:      "degraded_total",
			Help:      "Total chat turns answered from a fallback template.",
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rne",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "End-to-end chat turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	clarificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "chat",
			Name:      "clarifications_total",
			Help:      "Total clarification follow-ups asked, by category.",
		},
		[]string{"service", "category"},
	)
	segmentationFanOut := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rne",
			Subsystem: "chat",
			Name:      "segmentation_fan_out",
			Help:      "Distribution of sub-questions per segmented turn.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{"service"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total retrievals with at least one document.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rne",
			Subsystem: "retrieval",
			Name:      "no_context_total",
			Help:      "Total retrievals without documents.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rne",
			Subsystem: "retrieval",
			Name:      "retrieved_documents",
			Help:      "Distribution of retrieved documents per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatResponsesTotal,
		chatDegradedTotal,
		chatDuration,
		clarificationsTotal,
		segmentationFanOut,
		retrievalHitTotal,
		retrievalNoContextTotal,
		retrievedDocuments,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		chatResponsesTotal:      chatResponsesTotal,
		chatDegradedTotal:       chatDegradedTotal,
		chatDuration:            chatDuration,
		clarificationsTotal:     clarificationsTotal,
		segmentationFanOut:      segmentationFanOut,
		retrievalHitTotal:       retrievalHitTotal,
		retrievalNoContextTotal: retrievalNoContextTotal,
		retrievedDocuments:      retrievedDocuments,
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

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/documents/"):
		return "/api/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChatTurn(service, kind, language string, degraded bool, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if language == "" {
		language = "unknown"
	}
	m.chatResponsesTotal.WithLabelValues(service, kind, language).Inc()
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())
	if degraded {
		m.chatDegradedTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordClarification(service, category string) {
	if category == "" {
		category = "unknown"
	}
	m.clarificationsTotal.WithLabelValues(service, category).Inc()
}

func (m *HTTPServerMetrics) RecordSegmentationFanOut(service string, questions int) {
	if questions <= 0 {
		return
	}
	m.segmentationFanOut.WithLabelValues(service).Observe(float64(questions))
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, documents int) {
	m.retrievedDocuments.WithLabelValues(service, endpoint).Observe(float64(documents))
	if documents > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.retrievalNoContextTotal.WithLabelValues(service, endpoint).Inc()
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
