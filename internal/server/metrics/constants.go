package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameAvatarCacheLookups = "avatar_cache_lookups_total"
	MetricNameAvatarWrites       = "avatar_writes_total"
	MetricNameAuthAttempts       = "auth_attempts_total"
)

// Metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextAvatarCacheLookups = "Avatar fetches by cache tier and outcome"
	HelpTextAvatarWrites       = "Avatar uploads by storage variant and result"
	HelpTextAuthAttempts       = "Login and signup attempts by result"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelTier      = "tier"
	LabelResult    = "result"
	LabelStorage   = "storage"
	LabelOperation = "operation"
)

// Label values
const (
	TierMemory = "memory"
	TierDisk   = "disk"
	TierStore  = "store"

	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultFailure = "failure"

	// PathUnmatched labels requests no route matched.
	PathUnmatched = "unmatched"
)

// HTTPLatencyBuckets ranges from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
