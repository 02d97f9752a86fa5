package notice

import (
	"sync"
	"testing"

	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFirstFailureOnly(t *testing.T) {
	metrics := monitoring.NewMetrics(nil)
	s := NewSurface().WithMetrics(metrics)

	require.True(t, s.Report("news", "News is unavailable"))
	assert.False(t, s.Report("image", "Images are unavailable"))
	assert.False(t, s.Report("web", "Web results are unavailable"))

	n, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "News is unavailable", n.Message)
	assert.Equal(t, "news", n.Source)
	assert.True(t, n.Active)
	assert.NotEmpty(t, n.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notices.WithLabelValues("raised")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Notices.WithLabelValues("dropped")))
}

func TestDismissIsOnlyWayBack(t *testing.T) {
	s := NewSurface()
	require.True(t, s.Report("news", "first"))
	n, _ := s.Current()

	assert.False(t, s.Dismiss("not-the-id"))
	assert.Equal(t, StateShowing, s.State())

	assert.True(t, s.Dismiss(n.ID))
	assert.Equal(t, StateIdle, s.State())
	_, ok := s.Current()
	assert.False(t, ok)

	// Same id twice is a no-op
	assert.False(t, s.Dismiss(n.ID))

	require.True(t, s.Report("image", "second"))
	n2, _ := s.Current()
	assert.Equal(t, "second", n2.Message)
	assert.NotEqual(t, n.ID, n2.ID)
}

func TestSubscribe(t *testing.T) {
	s := NewSurface()

	var got []types.Notice
	cancel := s.Subscribe(func(n types.Notice) { got = append(got, n) })

	s.Report("news", "boom")
	n, _ := s.Current()
	s.Dismiss(n.ID)

	require.Len(t, got, 2)
	assert.True(t, got[0].Active)
	assert.False(t, got[1].Active)
	assert.Equal(t, got[0].ID, got[1].ID)

	cancel()
	cancel()
	s.Report("news", "again")
	assert.Len(t, got, 2)
}

func TestSubscribeReplaysShowingNotice(t *testing.T) {
	s := NewSurface()
	s.Report("news", "already up")

	var got []string
	s.Subscribe(func(n types.Notice) { got = append(got, n.Message) })

	assert.Equal(t, []string{"already up"}, got)
}

func TestCloseTearsDown(t *testing.T) {
	s := NewSurface()

	calls := 0
	s.Subscribe(func(types.Notice) { calls++ })
	s.Report("news", "boom")
	require.Equal(t, 1, calls)

	s.Close()
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Report("news", "after close"))
	assert.Equal(t, 1, calls)

	noop := s.Subscribe(func(types.Notice) { calls++ })
	noop()
}

func TestConcurrentReportsShowExactlyOne(t *testing.T) {
	s := NewSurface()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Report("news", "boom") {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := r.Surface("tok-a")
	assert.Same(t, a, r.Surface("tok-a"))
	b := r.Surface("tok-b")
	assert.NotSame(t, a, b)

	a.Report("news", "only for a")
	_, showing := b.Current()
	assert.False(t, showing)

	r.Discard("tok-a")
	_, ok := r.Lookup("tok-a")
	assert.False(t, ok)
	assert.False(t, a.Report("news", "closed"))
	assert.Equal(t, 1, r.Len())

	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.False(t, b.Report("news", "closed"))
}
