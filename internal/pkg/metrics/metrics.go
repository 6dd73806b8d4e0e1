package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gearvault",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gearvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gearvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gearvault",
			Subsystem: "equipment",
			Name:      "status_transitions_total",
			Help:      "Accepted equipment status transitions.",
		},
		[]string{"from", "to"},
	)

	maintenanceEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gearvault",
			Subsystem: "maintenance",
			Name:      "events_total",
			Help:      "Maintenance records opened, closed and force-closed.",
		},
		[]string{"action"},
	)

	accessDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gearvault",
			Subsystem: "access",
			Name:      "denials_total",
			Help:      "Access decisions that denied the caller, by internal reason.",
		},
		[]string{"kind", "reason"},
	)

	overdueEquipment = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gearvault",
			Name:      "maintenance_overdue_equipment",
			Help:      "Active equipment whose next maintenance is overdue, as of the last reminder sweep.",
		},
	)

	reminderRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gearvault",
			Subsystem: "maintenance",
			Name:      "reminder_runs_total",
			Help:      "Reminder sweeps executed.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		statusTransitions,
		maintenanceEvents,
		accessDenials,
		overdueEquipment,
		reminderRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordMaintenance counts maintenance record events: opened, closed or force_closed.
func RecordMaintenance(action string, n int) {
	if n <= 0 {
		return
	}
	maintenanceEvents.WithLabelValues(action).Add(float64(n))
}

func RecordAccessDenied(kind, reason string) {
	accessDenials.WithLabelValues(kind, reason).Inc()
}

func SetOverdueEquipment(n int) {
	overdueEquipment.Set(float64(n))
}

func RecordReminderRun(success bool) {
	reminderRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
}
