package constants

// API routes
const (
	APIRoot              = "/api"
	SyncAllRoute         = "/sync-all"
	SyncMetricsRoute     = "/sync-metrics"
	GlobeEventsRoute     = "/globe-events"
	MetricsSummaryRoute  = "/metrics-summary"
	PollerStatusRoute    = "/dev/poller-status"
	AdminProductsRoute   = "/admin/products"
	AdminProductIDParam  = "/admin/products/:id"
)

// Environment keys for operator tokens
const (
	EnvAdminAPIToken = "ADMIN_API_TOKEN"
	EnvDevAPIToken   = "DEV_API_TOKEN"
)
