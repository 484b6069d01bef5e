package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapdraw",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapdraw",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Drawing metrics
	ShapesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "shapes_committed_total",
		Help:      "Total shapes committed, by kind",
	}, []string{"kind"})

	ShapesUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "shapes_updated_total",
		Help:      "Total committed shapes replaced through the update hook",
	}, []string{"kind"})

	ShapesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "shapes_removed_total",
		Help:      "Total committed shapes removed through the delete hook",
	})

	ValidationWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "validation_warnings_total",
		Help:      "Total recoverable validation failures, by mode",
	}, []string{"mode"})

	InputEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "input_events_total",
		Help:      "Host pointer events delivered to sessions, by outcome",
	}, []string{"event", "result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapdraw",
		Subsystem: "draw",
		Name:      "active_sessions",
		Help:      "Current number of open drawing sessions",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapdraw",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	PublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdraw",
		Subsystem: "nats",
		Name:      "publish_errors_total",
		Help:      "Total shape events that could not be published",
	}, []string{"action"})
)

// Input event results.
const (
	ResultConsumed = "consumed"
	ResultIgnored  = "ignored"
	ResultRejected = "rejected"
	ResultRefused  = "refused"
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ShapeObserver counts collection changes. It implements ports.ShapeObserver.
type ShapeObserver struct{}

func (ShapeObserver) ShapeCreated(_ int, s domain.Shape) {
	ShapesCommitted.WithLabelValues(string(s.Kind())).Inc()
}

func (ShapeObserver) ShapeUpdated(_ int, s domain.Shape) {
	ShapesUpdated.WithLabelValues(string(s.Kind())).Inc()
}

func (ShapeObserver) ShapesDeleted(ids []int) {
	ShapesRemoved.Add(float64(len(ids)))
}
