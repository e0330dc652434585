// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority), including a local .env file
//  2. YAML file: $QOE_CONFIG_FILE, config.yaml or configs/config.yaml
//  3. Default() values (lowest priority)
//
// # Environment Variables
//
// Variables are prefixed with QOE_ and follow the struct nesting:
//
//	QOE_SERVER_PORT=8080
//	QOE_LOGGING_LEVEL=debug
//	QOE_UPLOAD_MAX_BYTES=67108864
//	QOE_CACHE_SESSION_TTL=30m
//	QOE_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://qoe.example.org
//
// # YAML
//
//	server:
//	  port: 9090
//	  request_timeout: 90s
//	cache:
//	  max_datasets: 64
//	telemetry:
//	  tracing_enabled: true
package config
