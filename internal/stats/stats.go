// Package stats implements the -S/-I supplemented statistics reporting
// (spec §12, grounded on original_source/Stats.h and
// SystemState::threadStats/systemStats): per-thread and per-core
// instruction counts, aggregate simulated GIPS and percent-of-peak, and
// (via a MultiQuantile adapted from eventloop/psquare.go) streaming
// instruction-gap percentiles for the -I flag, without retaining every
// sample.
package stats

import (
	"fmt"
	"io"
)

// gapPercentiles are the fixed set of instruction-gap percentiles the
// -I report tracks per thread: p50, p90, p99.
var gapPercentiles = []float64{0.5, 0.9, 0.99}

// ThreadStats accumulates one thread's instruction count and
// instruction-gap distribution.
type ThreadStats struct {
	Num          int
	Instructions uint64

	gaps     *MultiQuantile
	lastTick uint64
	haveLast bool
}

func newThreadStats(num int) *ThreadStats {
	return &ThreadStats{Num: num, gaps: NewMultiQuantile(gapPercentiles...)}
}

// record notes one executed instruction retiring at tick.
func (t *ThreadStats) record(tick uint64) {
	t.Instructions++
	if t.haveLast {
		t.gaps.Update(float64(tick - t.lastTick))
	}
	t.lastTick = tick
	t.haveLast = true
}

// GapPercentile returns the i-th configured instruction-gap percentile
// (0=p50, 1=p90, 2=p99), in cycles.
func (t *ThreadStats) GapPercentile(i int) float64 { return t.gaps.Quantile(i) }

// CoreStats aggregates ThreadStats for every thread of one Core. A nil
// *CoreStats is the default on a Core; instrumentation is a no-op
// unless the -S or -I flag attaches one (spec §12).
type CoreStats struct {
	CoreID  int
	Threads []*ThreadStats
}

// NewCoreStats allocates tracking for numThreads threads of core coreID.
func NewCoreStats(coreID, numThreads int) *CoreStats {
	c := &CoreStats{CoreID: coreID, Threads: make([]*ThreadStats, numThreads)}
	for i := range c.Threads {
		c.Threads[i] = newThreadStats(i)
	}
	return c
}

// Record notes one instruction retiring on thread threadNum at tick.
func (c *CoreStats) Record(threadNum int, tick uint64) {
	c.Threads[threadNum].record(tick)
}

// Instructions returns the total instruction count across all threads
// of this core.
func (c *CoreStats) Instructions() uint64 {
	var total uint64
	for _, t := range c.Threads {
		total += t.Instructions
	}
	return total
}

// SystemStats aggregates CoreStats for the whole machine, and reports
// the -S dump's simulated-GIPS / percent-of-peak summary.
type SystemStats struct {
	// ClockHz is the peak per-core clock rate, cycles/sec, used to
	// compute percent-of-peak.
	ClockHz float64

	Cores []*CoreStats
}

// NewSystemStats creates an empty aggregator.
func NewSystemStats(clockHz float64) *SystemStats {
	return &SystemStats{ClockHz: clockHz}
}

// AddCore registers a new core with numThreads threads and returns its
// CoreStats, to be attached to the corresponding core.Core.
func (s *SystemStats) AddCore(coreID, numThreads int) *CoreStats {
	c := NewCoreStats(coreID, numThreads)
	s.Cores = append(s.Cores, c)
	return c
}

// TotalInstructions sums instruction counts across every core.
func (s *SystemStats) TotalInstructions() uint64 {
	var total uint64
	for _, c := range s.Cores {
		total += c.Instructions()
	}
	return total
}

// GIPS estimates simulated giga-instructions-per-second given the
// wall-clock duration the run took.
func (s *SystemStats) GIPS(wallSeconds float64) float64 {
	if wallSeconds <= 0 {
		return 0
	}
	return float64(s.TotalInstructions()) / wallSeconds / 1e9
}

// PercentPeak reports simulated throughput as a percentage of the
// machine's theoretical peak (numCores * clockHz / cyclesPerInstruction).
func (s *SystemStats) PercentPeak(wallSeconds, cyclesPerInstruction float64) float64 {
	if wallSeconds <= 0 || len(s.Cores) == 0 || s.ClockHz <= 0 || cyclesPerInstruction <= 0 {
		return 0
	}
	peak := float64(len(s.Cores)) * s.ClockHz / cyclesPerInstruction
	actual := float64(s.TotalInstructions()) / wallSeconds
	return actual / peak * 100
}

// WriteReport writes the -S system-statistics dump: the aggregate
// GIPS/percent-of-peak line, followed by per-thread instruction counts
// and each thread's share of its core's instructions.
func (s *SystemStats) WriteReport(w io.Writer, wallSeconds, cyclesPerInstruction float64) {
	fmt.Fprintf(w, "%d instructions across %d core(s) in %.3fs (%.3f GIPS, %.2f%% of peak)\n",
		s.TotalInstructions(), len(s.Cores), wallSeconds, s.GIPS(wallSeconds), s.PercentPeak(wallSeconds, cyclesPerInstruction))
	for _, c := range s.Cores {
		total := c.Instructions()
		for _, t := range c.Threads {
			if t.Instructions == 0 {
				continue
			}
			var pct float64
			if total > 0 {
				pct = float64(t.Instructions) / float64(total) * 100
			}
			fmt.Fprintf(w, "  core %d thread %d: %d instructions (%.1f%% of core)\n", c.CoreID, t.Num, t.Instructions, pct)
		}
	}
}

// WriteInstructionReport writes the -I per-instruction stats: each
// active thread's instruction-gap percentiles.
func (s *SystemStats) WriteInstructionReport(w io.Writer) {
	for _, c := range s.Cores {
		for _, t := range c.Threads {
			if t.Instructions == 0 {
				continue
			}
			fmt.Fprintf(w, "  core %d thread %d: gap p50=%.1f p90=%.1f p99=%.1f cycles\n",
				c.CoreID, t.Num, t.GapPercentile(0), t.GapPercentile(1), t.GapPercentile(2))
		}
	}
}
