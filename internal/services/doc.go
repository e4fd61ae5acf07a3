// Package services implements the business logic layer between the
// HTTP handlers and the workbook parsing pipeline. It keeps business
// rules out of the transport layer and makes them testable in
// isolation.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides two services:
//
//	- ParseService: runs the normalization pipeline over workbooks,
//	  exports the resulting tables and records parse metrics
//	- HealthService: provides health, readiness and liveness checks
//
// # Error Handling
//
// Services return sentinel errors (ErrWorkbookNotFound, ErrNoWorkbooksFound,
// ErrInvalidFileType) that handlers transform into problem responses.
package services
