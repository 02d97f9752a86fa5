package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huggypanda/backend/internal/domain/notice"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/infrastructure/resilience"
)

// Stats serves a JSON view of the service's counters and breaker states
type Stats struct {
	metrics  *monitoring.Metrics
	breakers *resilience.Set
	notices  *notice.Registry
}

// NewStats creates a stats handler
func NewStats(metrics *monitoring.Metrics, breakers *resilience.Set, notices *notice.Registry) *Stats {
	return &Stats{metrics: metrics, breakers: breakers, notices: notices}
}

// StatsSnapshot represents a snapshot of service metrics
type StatsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Counters  monitoring.Snapshot `json:"counters"`
	Breakers  map[string]string   `json:"breakers"`
	Surfaces  int                 `json:"notice_surfaces"`
	Summary   StatsSummary        `json:"summary"`
}

// StatsSummary provides high-level ratios
type StatsSummary struct {
	ErrorRate           float64 `json:"error_rate"`
	ProviderFailureRate float64 `json:"provider_failure_rate"`
	StaleCycleRate      float64 `json:"stale_cycle_rate"`
}

// Get returns the current snapshot
func (s *Stats) Get(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

// Snapshot collects the current values
func (s *Stats) Snapshot() StatsSnapshot {
	counters := s.metrics.Snapshot()

	breakers := make(map[string]string)
	if s.breakers != nil {
		for name, state := range s.breakers.States() {
			breakers[name] = state.String()
		}
	}

	surfaces := 0
	if s.notices != nil {
		surfaces = s.notices.Len()
	}

	return StatsSnapshot{
		Timestamp: time.Now(),
		Counters:  counters,
		Breakers:  breakers,
		Surfaces:  surfaces,
		Summary: StatsSummary{
			ErrorRate:           ratio(counters.TotalErrors, counters.TotalRequests),
			ProviderFailureRate: ratio(counters.ProviderFailure, counters.ProviderCalls),
			StaleCycleRate:      ratio(counters.CyclesStale, counters.CyclesApplied+counters.CyclesStale),
		},
	}
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
