/*
Package tracing provides lightweight request tracing.

Spans are created per inbound HTTP request and per provider call. Trace
context travels in the X-Trace-ID and X-Span-ID headers, both on the
inbound request and on outbound provider requests. Finished spans are
logged asynchronously through a buffered collector.

	tracer := tracing.New("search", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "provider.news")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
