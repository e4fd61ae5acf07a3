// Package shared provides common utilities and test helpers used
// across the codebase. It is a home for functionality that does not
// belong to any specific domain or architectural layer.
//
// The testutil subpackage carries structured-logging test helpers:
// handlers that capture slog records so tests can assert on log
// output without touching global logger state.
//
// This package should only contain test utilities used by multiple
// packages and generic helpers with no domain-specific logic. It must
// not grow business logic or circular dependencies with other
// internal packages.
package shared
