package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/huggypanda/backend/internal/domain/notice"
	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Aggregator collects one bundle per cycle
type Aggregator interface {
	Aggregate(ctx context.Context, q types.Query, seq uint64) types.Bundle
}

// Composer derives a layout from a bundle
type Composer interface {
	Compose(b types.Bundle, mode types.Mode) types.LayoutBundle
}

// Cycle is the outcome of one submitted query
type Cycle struct {
	Sequence uint64
	Bundle   types.Bundle
	Layout   types.LayoutBundle
	Stale    bool
}

// LayoutListener receives every published layout for a token
type LayoutListener func(types.LayoutBundle)

type tokenState struct {
	seq       uint64
	cancel    context.CancelFunc
	latest    *types.LayoutBundle
	listeners map[uint64]LayoutListener
	nextSub   uint64
}

// Engine runs query cycles per session. A newer submission for the same
// token supersedes the older one: the old cycle is cancelled and its
// results are never published.
type Engine struct {
	aggregator Aggregator
	composer   Composer
	notices    *notice.Registry
	metrics    *monitoring.Metrics
	logger     *logging.Logger

	mu     sync.Mutex
	tokens map[string]*tokenState // Protected by mu
}

// NewEngine creates an engine
func NewEngine(aggregator Aggregator, composer Composer, notices *notice.Registry) *Engine {
	return &Engine{
		aggregator: aggregator,
		composer:   composer,
		notices:    notices,
		logger:     logging.NewNop(),
		tokens:     make(map[string]*tokenState),
	}
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(m *monitoring.Metrics) *Engine {
	e.metrics = m
	return e
}

// WithLogger sets the logger
func (e *Engine) WithLogger(l *logging.Logger) *Engine {
	e.logger = l.Named("search")
	return e
}

// Submit runs one cycle for token. The returned bool is false when a newer
// submission superseded this one before it settled.
func (e *Engine) Submit(ctx context.Context, token string, q types.Query) (Cycle, bool) {
	start := time.Now()

	e.mu.Lock()
	st := e.state(token)
	st.seq++
	seq := st.seq
	if st.cancel != nil {
		st.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	bundle := e.aggregator.Aggregate(cctx, q, seq)
	layout := e.composer.Compose(bundle, q.Mode)
	layout.Sequence = seq

	e.mu.Lock()
	st, ok := e.tokens[token]
	if !ok || st.seq != seq {
		e.mu.Unlock()
		e.recordCycle(q.Mode, start, true)
		e.logger.Debug("dropping superseded cycle",
			logging.Token(token),
			zap.Uint64("sequence", seq))
		return Cycle{Sequence: seq, Bundle: bundle, Stale: true}, false
	}
	st.cancel = nil
	published := layout
	st.latest = &published
	listeners := sortedListeners(st.listeners)
	e.mu.Unlock()

	e.recordCycle(q.Mode, start, false)
	e.forwardFailures(token, bundle)

	for _, fn := range listeners {
		fn(layout)
	}

	return Cycle{Sequence: seq, Bundle: bundle, Layout: layout}, true
}

// Latest returns the last published layout for token
func (e *Engine) Latest(token string) (types.LayoutBundle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.tokens[token]
	if !ok || st.latest == nil {
		return types.LayoutBundle{}, false
	}
	return *st.latest, true
}

// Subscribe registers fn for layouts published for token
func (e *Engine) Subscribe(token string, fn LayoutListener) func() {
	e.mu.Lock()
	st := e.state(token)
	key := st.nextSub
	st.nextSub++
	st.listeners[key] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if st, ok := e.tokens[token]; ok {
				delete(st.listeners, key)
			}
		})
	}
}

// Forget cancels any in-flight cycle for token and drops its state
func (e *Engine) Forget(token string) {
	e.mu.Lock()
	st, ok := e.tokens[token]
	delete(e.tokens, token)
	e.mu.Unlock()

	if ok && st.cancel != nil {
		st.cancel()
	}
}

// Close cancels every in-flight cycle
func (e *Engine) Close() {
	e.mu.Lock()
	tokens := e.tokens
	e.tokens = make(map[string]*tokenState)
	e.mu.Unlock()

	for _, st := range tokens {
		if st.cancel != nil {
			st.cancel()
		}
	}
}

// state returns the token's state; caller holds mu
func (e *Engine) state(token string) *tokenState {
	st, ok := e.tokens[token]
	if !ok {
		st = &tokenState{listeners: make(map[uint64]LayoutListener)}
		e.tokens[token] = st
	}
	return st
}

func (e *Engine) forwardFailures(token string, bundle types.Bundle) {
	failed := bundle.Failed()
	if len(failed) == 0 || e.notices == nil {
		return
	}

	surface := e.notices.Surface(token)
	for _, r := range failed {
		surface.Report(r.Source.String(), FailureMessage(r))
	}
}

func (e *Engine) recordCycle(mode types.Mode, start time.Time, stale bool) {
	if e.metrics != nil {
		e.metrics.RecordCycle(string(mode), time.Since(start), stale)
	}
}

func sortedListeners(m map[uint64]LayoutListener) []LayoutListener {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]LayoutListener, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// FailureMessage is the user-facing text for a failed provider result
func FailureMessage(r types.ProviderResult) string {
	name := SourceLabel(r.Source)
	switch r.Reason {
	case types.ReasonTimeout:
		return fmt.Sprintf("%s timed out. Try again in a moment.", name)
	case types.ReasonMalformed:
		return fmt.Sprintf("%s returned an unreadable response.", name)
	case types.ReasonUpstream:
		return fmt.Sprintf("%s refused the request.", name)
	default:
		return fmt.Sprintf("%s could not be reached.", name)
	}
}

// SourceLabel is the display name of a source
func SourceLabel(src types.Source) string {
	switch src.Kind {
	case types.KindLocalModel:
		return "The local model"
	case types.KindWeb:
		return "Web search"
	case types.KindImage:
		return "Image search"
	case types.KindNews:
		return "News"
	case types.KindUniversal:
		switch src.Subkind {
		case types.SubkindEncyclopedia:
			return "Encyclopedia"
		case types.SubkindMusic:
			return "Music search"
		case types.SubkindMedia:
			return "Movie and TV search"
		case types.SubkindTravel:
			return "Travel search"
		}
		return "The " + src.Subkind + " source"
	}
	return src.String()
}
