package profiler

import (
	"time"

	"github.com/Carmen-Shannon/tm3d-go/engine/log"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets where reports are logged.
func WithLogger(l *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.log = l
	}
}

// WithUpdateInterval sets how often Tick refreshes and logs the stats.
//
// Parameters:
//   - d: the interval, ignored when not positive
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithSystemStats enables or disables the CPU and resident size readings.
func WithSystemStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.systemStats = enabled
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
