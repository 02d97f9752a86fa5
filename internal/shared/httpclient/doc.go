/*
Package httpclient is the outbound HTTP client shared by provider backends
and the remote session store.

It wraps resty over a pooled transport, applies an optional token-bucket
rate limit, propagates trace headers and decodes JSON with sonic. Errors
fall into three classes that callers map to failure reasons:

	context.DeadlineExceeded  the per-call deadline expired
	ErrMalformed              body could not be decoded
	*UpstreamError            non-2xx status (or a provider-level refusal)

Anything else is a transport failure.
*/
package httpclient
