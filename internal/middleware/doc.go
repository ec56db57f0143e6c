// Package middleware provides HTTP middleware for the bridge's host
// surface.
//
// Stack:
//   - CORS: cross-origin access for webview hosts (gin-contrib/cors)
//   - RateLimit: per-IP token bucket limiting (golang.org/x/time/rate)
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
