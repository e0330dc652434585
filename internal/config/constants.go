package config

import "time"

// Application constants
const (
	AppName = "qoe-dashboard"

	DefaultLogFile = "logs/qoe-dashboard.log"

	// Upload limits
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Caching
	DefaultMaxDatasets = 32
	DefaultMaxSessions = 256
	DefaultSessionTTL  = 2 * time.Hour

	// Rate limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	DefaultRequestTimeout = 60 * time.Second
)
