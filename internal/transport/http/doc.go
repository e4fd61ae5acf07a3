// Package http implements the HTTP request handlers of the workbook
// normalization service. It is a thin layer between HTTP transport and
// the business logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/workbook/unreadable",
//	    "title": "Workbook Unreadable",
//	    "status": 422,
//	    "detail": "open workbook input/q3.xlsx: zip: not a valid zip file",
//	    "instance": "/api/parse"
//	}
//
// # Testing
//
// Handlers are tested using httptest with stub service implementations.
package http
