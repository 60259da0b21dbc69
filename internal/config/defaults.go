package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel         = "info"
	DefaultJSONLog          = false
	DefaultHTTPTimeout      = 12 * time.Second
	DefaultRenderTimeout    = 30 * time.Second
	DefaultRateLimitRPS     = 2.0
	DefaultRateLimitBurst   = 4
	DefaultBrowserHeadless  = true
	DefaultBatchConcurrency = 2
	MaxBatchConcurrency     = 8
)
