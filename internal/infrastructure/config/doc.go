// Package config provides 12-factor configuration management for the search backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
// A separate sources file declares the universal widget order and the
// static home page blocks.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, gzip, CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-client rate limiting configuration
//   - Session: Session store backend, cookie and staleness policy
//   - Providers: Upstream endpoints, credentials and per-source timeouts
//   - Layout: Image cap, grid width and sources file path
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	sources, err := config.LoadSources(cfg.Layout.SourcesFile)
//
// Environment Variables:
//   - PORT, HOST, GZIP_ENABLED, CORS_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - SESSION_BACKEND, REDIS_ADDR, REDIS_USER_PASS, SESSION_STALENESS, SESSION_REQUIRED
//   - LOCAL_MODEL_URL, BRAVE_SEARCH_API_KEY, TMDB_API_KEY, SPOTIFY_CLIENT_ID, TRIPADVISOR_API_KEY, NEW_YORK_TIMES_API_KEY
//   - IMAGE_CAP, IMAGES_PER_ROW, SOURCES_FILE
package config
