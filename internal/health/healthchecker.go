package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by per-dependency checkers (store, upstream
// search APIs). Each checker owns its probe loop and caches the last result.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds dependency checkers into one service-level flag.
// The service reports UP only while every dependency reports healthy.
type ServiceHealthChecker struct {
	healthy atomic.Bool
	deps    []HealthChecker
	log     zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns the cached service-level health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() }

// Start re-evaluates dependency health on the given interval until ctx is
// cancelled. Transitions are logged once, not on every tick.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var prev bool
	eval := func() {
		up := true
		for _, dep := range h.deps {
			if !dep.IsHealthy() {
				up = false
				h.log.Warn().Str("dependency", dep.Name()).Msg("dependency unhealthy")
			}
		}
		h.healthy.Store(up)
		if up != prev {
			if up {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Msg("service health: DOWN")
			}
			prev = up
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
