// Package main is the entry point for the HuggyPanda search backend.
//
// The server aggregates a local language model, Brave web/image/news
// search, Wikipedia, Spotify, TMDB and The New York Times into a two-pane
// layout, pushed over HTTP or the /stream websocket.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Optional sources file (YAML or TOML) for widget order and home blocks
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -sources sources.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
