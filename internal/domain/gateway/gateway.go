package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/infrastructure/resilience"
	"github.com/huggypanda/backend/internal/infrastructure/tracing"
	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
)

// DefaultTimeout applies when a gateway is built without one
const DefaultTimeout = 5 * time.Second

// Backend fetches items for one source. Implementations return
// httpclient.ErrMalformed or *httpclient.UpstreamError where they can tell.
type Backend interface {
	Source() types.Source
	Fetch(ctx context.Context, q types.Query) ([]types.Item, error)
}

// Annotator is implemented by backends that return result-level metadata
// alongside items, such as a spelling-corrected query.
type Annotator interface {
	FetchAnnotated(ctx context.Context, q types.Query) ([]types.Item, map[string]string, error)
}

// BackendFunc adapts a function to Backend
type BackendFunc struct {
	Src types.Source
	Fn  func(ctx context.Context, q types.Query) ([]types.Item, error)
}

func (b BackendFunc) Source() types.Source { return b.Src }

func (b BackendFunc) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	return b.Fn(ctx, q)
}

// errPanic marks a recovered backend panic
var errPanic = errors.New("provider panicked")

// Gateway turns one backend call into a settled ProviderResult. It never
// returns an error and never panics.
type Gateway struct {
	backend Backend
	timeout time.Duration
	breaker *resilience.Breaker
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// New creates a gateway with its own circuit breaker
func New(backend Backend, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		backend: backend,
		timeout: timeout,
		breaker: resilience.New(backend.Source().String(), resilience.DefaultSettings()),
		logger:  logging.NewNop(),
	}
}

// WithBreaker replaces the gateway's breaker
func (g *Gateway) WithBreaker(b *resilience.Breaker) *Gateway {
	g.breaker = b
	return g
}

// WithTracer records a span per call
func (g *Gateway) WithTracer(t *tracing.Tracer) *Gateway {
	g.tracer = t
	return g
}

// WithMetrics adds metrics tracking to the gateway
func (g *Gateway) WithMetrics(m *monitoring.Metrics) *Gateway {
	g.metrics = m
	return g
}

// WithLogger sets the logger
func (g *Gateway) WithLogger(l *logging.Logger) *Gateway {
	g.logger = l.Named("gateway")
	return g
}

// Source identifies the backend
func (g *Gateway) Source() types.Source {
	return g.backend.Source()
}

// Timeout returns the per-call deadline
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Call fetches q within the gateway's deadline and settles the result for
// cycle seq.
func (g *Gateway) Call(ctx context.Context, q types.Query, seq uint64) types.ProviderResult {
	src := g.Source()
	result := types.Pending(src, seq)
	start := time.Now()

	var span *tracing.Span
	if g.tracer != nil {
		span, ctx = g.tracer.StartSpan(ctx, "provider."+src.String())
		span.SetTag("provider.source", src.String())
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := resilience.Call(g.breaker, func() (outcome, error) {
		return g.fetch(ctx, q)
	})

	if err != nil {
		reason, detail := Classify(ctx, err)
		_ = result.Fail(reason, detail)
		g.logger.Warn("provider call failed",
			zap.String("source", src.String()),
			zap.String("reason", string(reason)),
			zap.Uint64("sequence", seq),
			zap.Error(err))
	} else {
		_ = result.Succeed(out.items)
		result.Meta = out.meta
	}
	result.Duration = time.Since(start)

	if g.metrics != nil {
		g.metrics.RecordProviderCall(src.String(), string(result.Status), string(result.Reason), result.Duration)
		g.metrics.SetBreakerState(src.String(), int(g.breaker.State()))
	}
	if span != nil {
		span.SetTag("provider.status", string(result.Status))
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
		g.tracer.Submit(span)
	}

	return result
}

type outcome struct {
	items []types.Item
	meta  map[string]string
	err   error
}

// fetch runs the backend and stops waiting when ctx ends, even if the
// backend ignores ctx.
func (g *Gateway) fetch(ctx context.Context, q types.Query) (outcome, error) {
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		var out outcome
		if a, ok := g.backend.(Annotator); ok {
			out.items, out.meta, out.err = a.FetchAnnotated(ctx, q)
		} else {
			out.items, out.err = g.backend.Fetch(ctx, q)
		}
		done <- out
	}()

	select {
	case out := <-done:
		if out.err == nil && ctx.Err() != nil {
			// Late success after the deadline still counts as a timeout
			return outcome{}, ctx.Err()
		}
		return out, out.err
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
}

// Classify maps a backend error to a failure reason and a short detail
func Classify(ctx context.Context, err error) (types.FailureReason, string) {
	var upstream *httpclient.UpstreamError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.ReasonTimeout, "timeout"
	case errors.Is(err, httpclient.ErrMalformed):
		return types.ReasonMalformed, err.Error()
	case errors.As(err, &upstream):
		return types.ReasonUpstream, upstream.Error()
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return types.ReasonTransport, err.Error()
	case ctx.Err() == context.DeadlineExceeded:
		// Transport errors that hide the deadline
		return types.ReasonTimeout, "timeout"
	default:
		return types.ReasonTransport, err.Error()
	}
}
