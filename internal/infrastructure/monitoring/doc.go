/*
Package monitoring provides metrics collection for the search backend.

# Overview

Prometheus collectors track HTTP traffic, provider gateway calls, circuit
breaker state, session creation and validation, aggregation cycles
(including superseded ones) and error notice transitions.

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "news")
	// ... call provider ...
	timer.Stop("failed", "timeout")
*/
package monitoring
