package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics - счетчики HTTP-запросов и заявок на вступление.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	joinRequests   *prometheus.CounterVec
}

// NewMetrics регистрирует коллекторы в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackathon",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackathon",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		joinRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackathon",
			Subsystem: "roster",
			Name:      "join_requests_total",
			Help:      "Join request writes by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requestTotal, m.requestLatency, m.joinRequests)
	return m
}

// Instrument записывает метрики по шаблону маршрута chi, а не по сырому пути.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "route": route, "status": strconv.Itoa(status)}
		m.requestTotal.With(labels).Inc()
		m.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// JoinRequest учитывает попытку создать заявку. Безопасно вызывать на nil.
func (m *Metrics) JoinRequest(ok bool) {
	if m == nil {
		return
	}
	outcome := "created"
	if !ok {
		outcome = "failed"
	}
	m.joinRequests.WithLabelValues(outcome).Inc()
}
