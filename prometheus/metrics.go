package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Concession operation counter
	ConcessionOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fees_concession_operations_total",
			Help: "Total number of concession operations",
		},
		[]string{"operation"}, // "create", "update", "delete", "distribute"
	)

	// Fee computation counter
	FeeComputationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fees_computations_total",
			Help: "Total number of fee computations",
		},
		[]string{"kind"}, // "effective", "outstanding", "components", "integrity"
	)

	// Tenant resolution counter
	TenantResolutionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fees_tenant_resolutions_total",
			Help: "Total number of tenant resolution attempts",
		},
	)

	// Error counters
	FeeErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fees_errors_total",
			Help: "Total number of fee operation errors",
		},
		[]string{"type"}, // "invalid_percentage", "no_fee_structure", "partial_write", etc.
	)

	TenantErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fees_tenant_errors_total",
			Help: "Total number of tenant resolution errors",
		},
		[]string{"code"},
	)

	// Rollback counter: compensating deletes after a failed distribution batch
	DistributionRollbackCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fees_distribution_rollbacks_total",
			Help: "Total number of distribution batches rolled back by compensating deletes",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fees_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fees_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fees_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)

	// Components touched per distribution
	DistributionSpread = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fees_distribution_components",
			Help:    "Number of fee components one concession was distributed across",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 12},
		},
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fees_info",
			Help: "Information about the fee service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(ConcessionOperationCounter)
	prometheus.MustRegister(FeeComputationCounter)
	prometheus.MustRegister(TenantResolutionCounter)
	prometheus.MustRegister(FeeErrorCounter)
	prometheus.MustRegister(TenantErrorCounter)
	prometheus.MustRegister(DistributionRollbackCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(DistributionSpread)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordConcessionOperation increments the concession operation counter
func RecordConcessionOperation(operation string) {
	ConcessionOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordFeeComputation increments the fee computation counter
func RecordFeeComputation(kind string) {
	FeeComputationCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordFeeError records a fee operation error by type
func RecordFeeError(errorType string) {
	FeeErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantError records a tenant resolution error by code
func RecordTenantError(code string) {
	TenantErrorCounter.With(prometheus.Labels{"code": code}).Inc()
}

// RecordDistributionSpread observes how many components a concession touched
func RecordDistributionSpread(components int) {
	DistributionSpread.Observe(float64(components))
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
