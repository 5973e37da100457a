// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as HTTP Basic authentication for publishers, request logging,
// CORS, rate limiting, tracing, and panic recovery.
package middleware
