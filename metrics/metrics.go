// Package metrics holds the Prometheus collectors of the print shop backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "printshop"

// Metric names follow printshop_<subsystem>_<name>.

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	rateLimited = newCounter("http", "rate_limited_total", "Requests rejected by the rate limiter.")

	ordersCreated   = newCounter("orders", "created_total", "Orders stored.")
	paymentsPosted  = newCounter("orders", "payments_total", "Payments recorded against orders.")
	guardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "orders", Name: "guard_rejections_total",
		Help: "Order submissions rejected by the submission guard.",
	}, []string{"reason"})

	billsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "bills", Name: "rendered_total",
		Help: "Bills rendered by format.",
	}, []string{"format"})
	archiveResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "bills", Name: "archive_total",
		Help: "Bill archive uploads by result.",
	}, []string{"result"})

	expensesRecorded = newCounter("expenses", "created_total", "Expenses recorded.")
)

func newCounter(subsystem, name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help})
}

// Guard rejection reasons
const (
	ReasonCooldown  = "cooldown"
	ReasonDuplicate = "duplicate"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RateLimited() { rateLimited.Inc() }

func OrderCreated() { ordersCreated.Inc() }

func PaymentPosted() { paymentsPosted.Inc() }

func GuardRejected(reason string) { guardRejections.WithLabelValues(reason).Inc() }

func BillRendered(format string) { billsRendered.WithLabelValues(format).Inc() }

// ArchiveResult counts archive outcomes: archived, skipped or failed.
func ArchiveResult(result string, n int) {
	if n > 0 {
		archiveResults.WithLabelValues(result).Add(float64(n))
	}
}

func ExpenseRecorded() { expensesRecorded.Inc() }
