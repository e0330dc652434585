// Package services holds the business logic behind the HTTP API.
//
// DatasetService parses uploads, memoizes parses by content fingerprint and
// keeps one session per upload. DashboardService resolves a filter query
// against a session and computes the chart, map, comparison, profile and
// option views. HealthService reports liveness, readiness and build info.
//
// Services take their dependencies through constructors and log with the
// injected *slog.Logger.
package services
