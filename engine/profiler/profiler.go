package profiler

import (
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/tm3d-go/engine/log"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is one profiler report, averaged over the update interval.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	// SystemCPU and ProcessCPU are percentages since the previous report. RSSMB is the resident
	// set size of this process. All three stay zero when system stats are disabled or unavailable.
	SystemCPU  float64
	ProcessCPU float64
	RSSMB      float64
}

// Profiler tracks frame rate, memory and CPU statistics for performance monitoring.
// Logs the stats at a configurable interval.
type Profiler struct {
	log            *log.Logger
	now            func() time.Time
	updateInterval time.Duration
	systemStats    bool
	proc           *process.Process

	frameCount     int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	stats          Stats
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
		systemStats:    true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()

	if p.systemStats {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			p.log.Warn("process stats unavailable", "error", err)
		} else {
			p.proc = proc
			// the first percentage call only primes the counters
			proc.Percent(0)
		}
		cpu.Percent(0, false)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it refreshes Stats and logs them: FPS, heap usage,
// allocation rate, GC count and pause times, OS memory, CPU usage and resident size.
//
// Returns:
//   - bool: true if stats were refreshed this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 pauses
	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	if p.systemStats {
		p.readSystemStats(&s)
	}

	p.log.Info("profiler",
		"fps", s.FPS,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
		"cpu", s.SystemCPU,
		"process_cpu", s.ProcessCPU,
		"rss_mb", s.RSSMB,
	)

	p.stats = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Stats returns the most recent report, zero before the first interval elapses.
func (p *Profiler) Stats() Stats {
	return p.stats
}

func (p *Profiler) readSystemStats(s *Stats) {
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		s.SystemCPU = usage[0]
	}
	if p.proc == nil {
		return
	}
	if pct, err := p.proc.Percent(0); err == nil {
		s.ProcessCPU = pct
	}
	if mem, err := p.proc.MemoryInfo(); err == nil && mem != nil {
		s.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
}
