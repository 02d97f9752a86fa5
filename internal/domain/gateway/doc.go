/*
Package gateway normalises every provider call into a types.ProviderResult.

A Gateway wraps one Backend with a deadline, a circuit breaker, panic
recovery, metrics and a tracing span. Call always returns a settled
result: ok with zero or more items, or failed with one of

	timeout    the deadline expired
	malformed  the payload could not be decoded
	upstream   the provider answered with a refusal
	transport  anything else, including an open breaker

An empty but well-formed answer is ok with no items, not a failure.
*/
package gateway
