// Package app provides application initialization and lifecycle
// management for the workbook normalization service. It wires
// configuration, logging, observability, services and the HTTP server
// together and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Initialize services with their dependencies
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure:
//
//	- Active requests are completed
//	- Metrics collection is stopped
//	- OpenTelemetry providers are flushed
//	- The log file is closed
package app
