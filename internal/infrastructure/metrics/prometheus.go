package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the FX rates service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fx_rates_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fx_rates_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_cache_operations_total",
			Help: "Total number of cache operations per named cache",
		},
		[]string{"cache", "operation", "result"}, // operation: get/set/delete/flush/evict/prune
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fx_rates_cache_keys",
			Help: "Number of entries currently held by each named cache",
		},
		[]string{"cache"},
	)

	// External API Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_external_api_requests_total",
			Help: "Total number of external API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fx_rates_external_api_request_duration_seconds",
			Help:    "External API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_external_api_retries_total",
			Help: "Total number of external API retry attempts",
		},
		[]string{"service", "endpoint", "attempt"},
	)

	UpstreamThrottleWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fx_rates_upstream_throttle_wait_seconds",
			Help:    "Time spent waiting for the outbound token bucket",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
	)

	TimeSourceFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fx_rates_time_source_fallbacks_total",
			Help: "Times the external time source failed and the local clock was used",
		},
	)

	// Business Metrics
	RateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_rate_requests_total",
			Help: "Total number of resolver requests by operation and source",
		},
		[]string{"operation", "source"}, // source: cache/upstream/substituted/none
	)

	DateFallbackSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fx_rates_date_fallback_steps",
			Help:    "Days stepped back before finding a rates table",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
		},
	)

	BulkFanoutCurrencies = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fx_rates_bulk_fanout_currencies",
			Help:    "Currencies per bulk history fan-out by outcome",
			Buckets: []float64{1, 5, 10, 15, 20, 30, 40},
		},
		[]string{"outcome"}, // outcome: with_data/empty
	)

	// Warming Metrics
	WarmingJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_warming_job_runs_total",
			Help: "Total number of warming job runs by result",
		},
		[]string{"job", "result"}, // result: completed/failed
	)

	WarmingJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fx_rates_warming_job_duration_seconds",
			Help:    "Warming job duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"job"},
	)

	WarmingSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_warming_sweeps_total",
			Help: "Total number of sweep requests by outcome",
		},
		[]string{"outcome"}, // outcome: started/skipped
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rates_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fx_rates_application_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)

	UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fx_rates_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(cache, operation, result string) {
	CacheOperationsTotal.WithLabelValues(cache, operation, result).Inc()
}

// UpdateCacheKeys updates the entry count gauge of a named cache
func UpdateCacheKeys(cache string, keys int) {
	CacheKeys.WithLabelValues(cache).Set(float64(keys))
}

// RecordExternalAPICall records external API call metrics (duration in seconds)
func RecordExternalAPICall(service, endpoint string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(duration)
}

// RecordExternalAPIRetry records external API retry attempts
func RecordExternalAPIRetry(service, endpoint string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordThrottleWait records time blocked on the outbound limiter
func RecordThrottleWait(seconds float64) {
	UpstreamThrottleWaitSeconds.Observe(seconds)
}

// RecordTimeSourceFallback counts a local clock fallback
func RecordTimeSourceFallback() {
	TimeSourceFallbacksTotal.Inc()
}

// RecordRateRequest records which source served a resolver call
func RecordRateRequest(operation, source string) {
	RateRequestsTotal.WithLabelValues(operation, source).Inc()
}

// RecordDateFallbackSteps records how many days the resolver stepped back
func RecordDateFallbackSteps(steps int) {
	DateFallbackSteps.Observe(float64(steps))
}

// RecordBulkFanout records the outcome of a bulk history fan-out
func RecordBulkFanout(withData, empty int) {
	BulkFanoutCurrencies.WithLabelValues("with_data").Observe(float64(withData))
	BulkFanoutCurrencies.WithLabelValues("empty").Observe(float64(empty))
}

// RecordWarmingJob records a finished warming job
func RecordWarmingJob(job string, failed bool, duration float64) {
	result := "completed"
	if failed {
		result = "failed"
	}
	WarmingJobRunsTotal.WithLabelValues(job, result).Inc()
	WarmingJobDuration.WithLabelValues(job).Observe(duration)
}

// RecordWarmingSweep records whether a sweep request started or was skipped
func RecordWarmingSweep(started bool) {
	outcome := "skipped"
	if started {
		outcome = "started"
	}
	WarmingSweepsTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, goVersion string) {
	ApplicationInfo.WithLabelValues(version, goVersion).Set(1)
}

// UpdateUptime updates application uptime
func UpdateUptime(seconds float64) {
	UptimeSeconds.Set(seconds)
}
