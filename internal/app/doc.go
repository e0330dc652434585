// Package app wires the QoE dashboard together: configuration, logging,
// OpenTelemetry, the dataset and dashboard services, the HTTP router and the
// server lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, QOE_* environment)
//  2. Initialize the JSON logger and OpenTelemetry providers
//  3. Create business metrics and the services
//  4. Build the chi router and its middleware chain
//  5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then drains in-flight requests, stops the
// session sweeper and the system metrics collector, and flushes telemetry.
package app
