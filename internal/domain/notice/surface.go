package notice

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/shared/types"
)

// State of a surface
type State int

const (
	StateIdle State = iota
	StateShowing
)

func (s State) String() string {
	if s == StateShowing {
		return "showing"
	}
	return "idle"
}

// Listener receives every notice transition. A dismissed notice is
// delivered with Active false.
type Listener func(types.Notice)

// Surface holds at most one active notice. The first failure after idle
// is shown; later failures are dropped until the user dismisses it.
type Surface struct {
	mu      sync.Mutex
	state   State               // Protected by mu
	current types.Notice        // Protected by mu
	subs    map[uint64]Listener // Protected by mu
	nextSub uint64              // Protected by mu
	closed  bool                // Protected by mu

	now     func() time.Time
	metrics *monitoring.Metrics
}

// NewSurface creates an idle surface
func NewSurface() *Surface {
	return &Surface{
		subs: make(map[uint64]Listener),
		now:  time.Now,
	}
}

// WithMetrics adds metrics tracking to the surface
func (s *Surface) WithMetrics(metrics *monitoring.Metrics) *Surface {
	s.metrics = metrics
	return s
}

// Report shows message if the surface is idle. It returns false when the
// report was dropped because a notice is already showing.
func (s *Surface) Report(source, message string) bool {
	s.mu.Lock()
	if s.closed || s.state == StateShowing {
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			s.record("dropped")
		}
		return false
	}

	s.state = StateShowing
	s.current = types.Notice{
		ID:       uuid.NewString(),
		Message:  message,
		Active:   true,
		Source:   source,
		RaisedAt: s.now(),
	}
	n := s.current
	listeners := s.listeners()
	s.mu.Unlock()

	s.record("raised")
	notify(listeners, n)
	return true
}

// Dismiss clears the notice with the given id. It is the only way back
// to idle; a later successful query does not clear it.
func (s *Surface) Dismiss(id string) bool {
	s.mu.Lock()
	if s.closed || s.state != StateShowing || s.current.ID != id {
		s.mu.Unlock()
		return false
	}

	n := s.current
	n.Active = false
	s.state = StateIdle
	s.current = types.Notice{}
	listeners := s.listeners()
	s.mu.Unlock()

	s.record("dismissed")
	notify(listeners, n)
	return true
}

// Current returns the active notice, if any
func (s *Surface) Current() (types.Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateShowing {
		return types.Notice{}, false
	}
	return s.current, true
}

// State returns the current state
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for transitions and returns its cancel func.
// A notice already showing is delivered immediately.
func (s *Surface) Subscribe(fn Listener) func() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}

	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn

	var pending *types.Notice
	if s.state == StateShowing {
		n := s.current
		pending = &n
	}
	s.mu.Unlock()

	if pending != nil {
		fn(*pending)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, key)
			s.mu.Unlock()
		})
	}
}

// Close clears the notice and drops every subscriber. Further reports are
// ignored.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.state = StateIdle
	s.current = types.Notice{}
	s.subs = make(map[uint64]Listener)
}

// listeners snapshots subscribers in registration order; caller holds mu
func (s *Surface) listeners() []Listener {
	keys := make([]uint64, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Listener, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.subs[k])
	}
	return out
}

func (s *Surface) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordNotice(event)
	}
}

func notify(listeners []Listener, n types.Notice) {
	for _, fn := range listeners {
		fn(n)
	}
}
