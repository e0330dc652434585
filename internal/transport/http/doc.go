// Package http implements the HTTP handlers of the QoE dashboard API.
// Handlers stay thin: they parse and validate the request, call a service
// and render the result. Business logic lives in the services package.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → dataprocessing
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Filter Query
//
// Every dashboard view accepts the same query string:
//
//	period            "All" or a month label such as "January 2024"
//	region            repeatable; absent or empty selects every region
//	location          repeatable; absent selects every location left after
//	                  the region filter, an empty value selects none
//	route_parameter   parameter shown for Route Test, default the first one
//	static_parameter  parameter shown for Static Test, default the first one
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/dataset/missing-columns",
//	    "title": "Missing Required Columns",
//	    "status": 422,
//	    "detail": "missing required columns: \"Jenis Pengukuran\"",
//	    "instance": "/api/datasets"
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
