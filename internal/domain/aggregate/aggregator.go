package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultImageCap bounds the image grid
const DefaultImageCap = 14

// Caller is one configured provider; gateway.Gateway satisfies it
type Caller interface {
	Source() types.Source
	Call(ctx context.Context, q types.Query, seq uint64) types.ProviderResult
}

// Aggregator fans a query out to every provider configured for its mode
// and collects one settled result per provider.
type Aggregator struct {
	mu       sync.RWMutex
	callers  map[types.Mode][]Caller // Protected by mu
	imageCap int
	logger   *logging.Logger
}

// New creates an aggregator with the given image cap
func New(imageCap int) *Aggregator {
	if imageCap <= 0 {
		imageCap = DefaultImageCap
	}
	return &Aggregator{
		callers:  make(map[types.Mode][]Caller),
		imageCap: imageCap,
		logger:   logging.NewNop(),
	}
}

// WithLogger sets the logger
func (a *Aggregator) WithLogger(l *logging.Logger) *Aggregator {
	a.logger = l.Named("aggregate")
	return a
}

// Register appends callers for mode. Registration order is the declared
// order universal widgets are laid out in.
func (a *Aggregator) Register(mode types.Mode, callers ...Caller) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[types.Source]bool)
	for _, c := range a.callers[mode] {
		seen[c.Source()] = true
	}
	for _, c := range callers {
		src := c.Source()
		if seen[src] {
			return fmt.Errorf("source %s registered twice for %s", src, mode)
		}
		seen[src] = true
	}

	a.callers[mode] = append(a.callers[mode], callers...)
	return nil
}

// Sources lists the configured sources for mode in declared order
func (a *Aggregator) Sources(mode types.Mode) []types.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]types.Source, 0, len(a.callers[mode]))
	for _, c := range a.callers[mode] {
		out = append(out, c.Source())
	}
	return out
}

// Aggregate queries every configured provider concurrently and waits for
// all of them. The bundle holds exactly one settled result per source.
func (a *Aggregator) Aggregate(ctx context.Context, q types.Query, seq uint64) types.Bundle {
	a.mu.RLock()
	callers := append([]Caller(nil), a.callers[q.Mode]...)
	a.mu.RUnlock()

	start := time.Now()
	results := make([]types.ProviderResult, len(callers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range callers {
		i, c := i, c
		g.Go(func() error {
			results[i] = c.Call(gctx, q, seq)
			return nil
		})
	}
	_ = g.Wait()

	bundle := types.Bundle{
		Query:    q,
		Sequence: seq,
		Order:    make([]types.Source, len(callers)),
		Results:  make(map[types.Source]types.ProviderResult, len(callers)),
	}
	failed := 0
	for i, c := range callers {
		src := c.Source()
		r := settle(results[i], src, seq)
		if src.Kind == types.KindImage {
			r.Truncate(a.imageCap)
		}
		if r.Status == types.StatusFailed {
			failed++
		}
		bundle.Order[i] = src
		bundle.Results[src] = r
	}

	a.logger.Debug("aggregation complete",
		zap.String("mode", string(q.Mode)),
		zap.Uint64("sequence", seq),
		zap.Int("sources", len(callers)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))

	return bundle
}

// settle guards against callers that hand back an unresolved or
// mislabelled result.
func settle(r types.ProviderResult, src types.Source, seq uint64) types.ProviderResult {
	r.Source = src
	r.Sequence = seq
	if r.Status == types.StatusPending || r.Status == "" {
		r.Status = types.StatusPending
		_ = r.Fail(types.ReasonTransport, "provider did not settle")
	}
	return r
}
