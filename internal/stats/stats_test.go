package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreStatsRecordsPerThread(t *testing.T) {
	c := NewCoreStats(0, 2)
	c.Record(0, 100)
	c.Record(0, 104)
	c.Record(1, 50)

	assert.EqualValues(t, 2, c.Threads[0].Instructions)
	assert.EqualValues(t, 1, c.Threads[1].Instructions)
	assert.EqualValues(t, 3, c.Instructions())
}

func TestSystemStatsAggregatesAcrossCores(t *testing.T) {
	s := NewSystemStats(400e6)
	c0 := s.AddCore(0, 1)
	c1 := s.AddCore(1, 1)
	c0.Record(0, 4)
	c0.Record(0, 8)
	c1.Record(0, 4)

	assert.EqualValues(t, 3, s.TotalInstructions())
	assert.Greater(t, s.GIPS(1.0), 0.0)
	assert.Zero(t, s.GIPS(0))
}

func TestSystemStatsPercentPeakGuardsZeroInputs(t *testing.T) {
	s := NewSystemStats(0)
	assert.Zero(t, s.PercentPeak(1, 4))

	s = NewSystemStats(400e6)
	assert.Zero(t, s.PercentPeak(0, 4))
	assert.Zero(t, s.PercentPeak(1, 0))
}

func TestWriteReportIncludesActiveThreadsOnly(t *testing.T) {
	s := NewSystemStats(400e6)
	c := s.AddCore(0, 2)
	c.Record(0, 4)
	c.Record(0, 8)

	var buf bytes.Buffer
	s.WriteReport(&buf, 1.0, 4)
	out := buf.String()
	assert.Contains(t, out, "core 0 thread 0")
	assert.NotContains(t, out, "core 0 thread 1")
}

func TestMultiQuantileConvergesOnUniformData(t *testing.T) {
	m := NewMultiQuantile(0.5, 0.9, 0.99)
	for i := 1; i <= 1000; i++ {
		m.Update(float64(i))
	}
	require.Equal(t, 1000, m.Count())
	assert.InDelta(t, 500, m.Quantile(0), 50)
	assert.InDelta(t, 900, m.Quantile(1), 50)
	assert.Equal(t, 1000.0, m.Max())
}

func TestMultiQuantileFewSamples(t *testing.T) {
	m := NewMultiQuantile(0.5)
	m.Update(10)
	m.Update(20)
	assert.Equal(t, 2, m.Count())
	assert.InDelta(t, 15, m.Quantile(0), 10)
}

func TestWriteInstructionReportGapPercentiles(t *testing.T) {
	s := NewSystemStats(400e6)
	c := s.AddCore(0, 1)
	for tick := uint64(0); tick < 6000; tick += 4 {
		c.Record(0, tick)
	}

	var buf bytes.Buffer
	s.WriteInstructionReport(&buf)
	assert.Contains(t, buf.String(), "gap p50=4.0")
}
