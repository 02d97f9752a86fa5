// Package session resolves the client's session on each page request.
//
// The coordinator reads the token from the request's cookie jar, checks it
// with the session store and, when it is absent, expired or cannot be
// checked, replaces it with a freshly created one. Recreation happens at
// most once per call. When creation fails the failure goes to the client's
// error surface and the request proceeds with an invalid session.
//
// Example Usage:
//
//	coord := session.NewCoordinator(store, store, session.Options{}).
//		WithLogger(logger).
//		WithMetrics(metrics)
//	sess := coord.EnsureSession(ctx, jar, surface)
package session
