package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Submission results used as the "result" label.
const (
	ResultConfirmed  = "confirmed"
	ResultValidation = "validation_failed"
	ResultInProgress = "in_progress"
	ResultFailed     = "failed"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	CartMutations    *prometheus.CounterVec
	OrderSubmissions *prometheus.CounterVec
	OrderRevenue     prometheus.Counter
}

// NewServerMetrics registers the storefront collectors on a private
// registry so several instances can coexist in tests.
func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "order_submissions_total",
		Help:      "Order submissions by result.",
	}, []string{"result"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "order_revenue_total",
		Help:      "Sum of confirmed order totals.",
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		requests, latency, mutations, submissions, revenue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &ServerMetrics{
		registry:         reg,
		Requests:         requests,
		LatencyMS:        latency,
		CartMutations:    mutations,
		OrderSubmissions: submissions,
		OrderRevenue:     revenue,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by chi route pattern and status.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		handler := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				handler = r.Method + " " + pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (m *ServerMetrics) CartMutation(op string) {
	m.CartMutations.WithLabelValues(op).Inc()
}

// Submission records the outcome of an order attempt.
func (m *ServerMetrics) Submission(err error) {
	m.OrderSubmissions.WithLabelValues(submissionResult(err)).Inc()
}

// OrderPlaced adds a confirmed order's total to the revenue counter.
func (m *ServerMetrics) OrderPlaced(_ context.Context, p order.Placement) error {
	m.OrderRevenue.Add(p.Confirmation.Total.Float64())
	return nil
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return ResultConfirmed
	case order.IsValidation(err):
		return ResultValidation
	case errors.Is(err, order.ErrSubmissionInProgress):
		return ResultInProgress
	default:
		return ResultFailed
	}
}
