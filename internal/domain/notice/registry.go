package notice

import (
	"sync"

	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
)

// Registry keeps one surface per session token
type Registry struct {
	mu       sync.Mutex
	surfaces map[string]*Surface
	metrics  *monitoring.Metrics
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]*Surface)}
}

// WithMetrics adds metrics tracking to surfaces created from now on
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// Surface returns the surface for key, creating it on first use
func (r *Registry) Surface(key string) *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[key]
	if !ok {
		s = NewSurface().WithMetrics(r.metrics)
		r.surfaces[key] = s
	}
	return s
}

// Lookup returns the surface for key without creating one
func (r *Registry) Lookup(key string) (*Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[key]
	return s, ok
}

// Discard closes and forgets the surface for key
func (r *Registry) Discard(key string) {
	r.mu.Lock()
	s, ok := r.surfaces[key]
	delete(r.surfaces, key)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live surfaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.surfaces)
}

// Close tears down every surface
func (r *Registry) Close() {
	r.mu.Lock()
	surfaces := r.surfaces
	r.surfaces = make(map[string]*Surface)
	r.mu.Unlock()

	for _, s := range surfaces {
		s.Close()
	}
}
