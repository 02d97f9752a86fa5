// Package server wires the search backend together.
//
// NewServer builds every component from a config.Config:
//   - session store (Redis or the remote session service)
//   - provider clients and their gateways, one breaker per source
//   - aggregator, layout composer, notice registry and search engine
//   - session coordinator shared by HTTP and the /stream websocket
//   - Gin router with recovery, tracing, metrics, CORS and rate limiting
//
// Responses are gzip compressed when enabled, except for /stream.
//
// Example Usage:
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(cfg)
//	go srv.Run()
//	defer srv.Close(ctx)
package server
