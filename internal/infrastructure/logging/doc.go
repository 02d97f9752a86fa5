// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and derive a named child with Named, so that
// gateway, session and search logs can be filtered by component. Session
// tokens are only ever logged through the Token field helper.
//
// Example Usage:
//
//	logger := logging.NewFromLevel("info", false)
//	logger.Named("gateway").Warn("provider failed", zap.String("source", "news"))
package logging
