// Package search coordinates query cycles for each session.
//
// Every submission gets the next sequence number for its session token and
// cancels the cycle it supersedes. When a cycle settles, its layout is
// published only if no newer submission arrived in the meantime; failures
// of the published cycle are forwarded to the session's notice surface.
package search
