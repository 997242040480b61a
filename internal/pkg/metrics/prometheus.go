// internal/pkg/metrics/prometheus.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	geocodeResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_geocode_resolutions_total",
			Help: "Coordinate resolutions by the strategy that produced them",
		},
		[]string{"strategy"},
	)

	nominatimRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_nominatim_requests_total",
			Help: "Nominatim lookups by outcome (hit, empty, error, cached)",
		},
		[]string{"outcome"},
	)

	shippingQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_shipping_quotes_total",
			Help: "Shipping quotes by fee tier",
		},
		[]string{"tier"},
	)

	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart store operations by kind and result",
		},
		[]string{"operation", "result"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_upstream_request_duration_seconds",
			Help:    "Commerce API request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_cart_sessions",
			Help: "Number of cart stores held in memory",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies. The route template is used
// as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// --- Business metric helpers ---

// RecordGeocodeResolution records which strategy resolved an address
func RecordGeocodeResolution(strategy string) {
	geocodeResolutions.WithLabelValues(strategy).Inc()
}

// RecordNominatimRequest records the outcome of one Nominatim query
func RecordNominatimRequest(outcome string) {
	nominatimRequests.WithLabelValues(outcome).Inc()
}

// RecordShippingQuote records a computed quote's tier
func RecordShippingQuote(tier string) {
	shippingQuotes.WithLabelValues(tier).Inc()
}

// RecordCartOperation records a cart store operation
func RecordCartOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cartOperations.WithLabelValues(operation, result).Inc()
}

// RecordCheckout records a checkout attempt
func RecordCheckout(result string) {
	checkoutsTotal.WithLabelValues(result).Inc()
}

// RecordUpstreamRequest records a commerce API call
func RecordUpstreamRequest(method, endpoint string, status int, duration time.Duration) {
	upstreamRequestDuration.WithLabelValues(method, endpoint, strconv.Itoa(status)).Observe(duration.Seconds())
}

// SetActiveSessions records the number of live cart sessions
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}
