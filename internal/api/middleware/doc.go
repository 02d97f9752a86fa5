// Package middleware provides the HTTP middleware for the search API.
//
// Middleware stack includes:
//   - CORS: cross-origin access for the search page, credentials allowed
//     so the session cookie is sent
//   - RateLimit: per-IP token bucket; idle clients are swept
//   - GlobalRateLimit: one bucket for the whole process
//
// Rejected requests get the standard envelope with status 429.
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
