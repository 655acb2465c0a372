package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"promptd/internal/controller"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promptd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promptd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "promptd",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "promptd",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of prompts waiting to be sent",
		},
	)

	dispatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "promptd",
			Subsystem: "queue",
			Name:      "dispatches_total",
			Help:      "Total prompts dispatched on idle edges",
		},
	)

	dispatchAbortsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promptd",
			Subsystem: "queue",
			Name:      "dispatch_aborts_total",
			Help:      "Dispatches aborted with the queue left unchanged",
		},
		[]string{"reason"},
	)

	rejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promptd",
			Subsystem: "queue",
			Name:      "rejected_total",
			Help:      "Submissions rejected before queueing",
		},
		[]string{"reason"},
	)

	verdictBusy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "promptd",
			Subsystem: "monitor",
			Name:      "busy",
			Help:      "1 while the generation process is inferred busy",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal, httpRequestDuration, httpInflight,
		queueDepth, dispatchesTotal, dispatchAbortsTotal, rejectedTotal, verdictBusy,
	)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePatternOrPath(r)
		method := r.Method
		httpInflight.WithLabelValues(path).Inc()
		defer httpInflight.WithLabelValues(path).Dec()

		sr := &statusRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sr, r)
		statusLabel := itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, method, statusLabel).Observe(dur)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// IncrementRejected is called when a submission is refused.
func IncrementRejected(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	rejectedTotal.WithLabelValues(reason).Inc()
}

// SetQueueDepth records the current queue length.
func SetQueueDepth(n int) { queueDepth.Set(float64(n)) }

// SetBusyVerdict records the monitor's current inference.
func SetBusyVerdict(busy bool) {
	if busy {
		verdictBusy.Set(1)
		return
	}
	verdictBusy.Set(0)
}

// MetricsPublisher maps controller events onto prometheus metrics. Install
// it as (part of) the controller's EventPublisher.
type MetricsPublisher struct{}

func (MetricsPublisher) Publish(e controller.Event) {
	switch e.Name {
	case controller.EventDispatchSent:
		dispatchesTotal.Inc()
		if n, ok := e.Fields["remaining"].(int); ok {
			queueDepth.Set(float64(n))
		}
	case controller.EventDispatchAborted:
		reason, _ := e.Fields["reason"].(string)
		if reason == "" {
			reason = "unspecified"
		}
		dispatchAbortsTotal.WithLabelValues(reason).Inc()
	case controller.EventQueueAccepted:
		if n, ok := e.Fields["length"].(int); ok {
			queueDepth.Set(float64(n))
		}
	}
}

// fast integer to ascii for small set of status codes
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
