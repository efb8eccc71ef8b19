package monitor_test

import (
	"testing"

	"github.com/probelab/probectl/internal/monitor"
	"github.com/probelab/probectl/internal/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledMonitorIsNotAFault(t *testing.T) {
	eval := monitor.NewEvaluator(monitor.Config{Enabled: false})

	eval.Observe(10, -500)
	res := eval.Result()

	assert.False(t, res.Crossed, "disabled monitor makes no crossing determination")
	assert.True(t, eval.Fired(), "disabled monitor deems the cycle successful")
	assert.True(t, eval.Closed(0))
}

func TestNegativeCrossing(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    -200,
		ExpectNegative: true,
		WindowStart:    0,
		WindowEnd:      625,
	}

	res := monitor.Evaluate(cfg, []monitor.Sample{
		{Tick: 5, MV: -100},
		{Tick: 10, MV: -250},
		{Tick: 15, MV: -300},
	})

	require.True(t, res.Crossed)
	assert.Equal(t, int64(10), res.CrossTick, "crossing is the first qualifying sample")
	assert.Equal(t, int64(-300), res.Sample, "Sample tracks the last feedback value")
}

func TestPositiveCrossing(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    300,
		ExpectNegative: false,
		WindowStart:    0,
		WindowEnd:      100,
	}

	res := monitor.Evaluate(cfg, []monitor.Sample{
		{Tick: 1, MV: 100},
		{Tick: 2, MV: 350},
	})

	require.True(t, res.Crossed)
	assert.Equal(t, int64(2), res.CrossTick)
}

func TestNoCrossingIsAMiss(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    -200,
		ExpectNegative: true,
		WindowStart:    0,
		WindowEnd:      625,
	}

	eval := monitor.NewEvaluator(cfg)
	for tick := int64(0); tick < 625; tick++ {
		eval.Observe(tick, -100)
	}

	assert.False(t, eval.Result().Crossed)
	assert.False(t, eval.Fired())
}

func TestSamplesOutsideWindowNeverCross(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    -200,
		ExpectNegative: true,
		WindowStart:    100,
		WindowEnd:      200,
	}

	res := monitor.Evaluate(cfg, []monitor.Sample{
		{Tick: 50, MV: -500},  // before the window
		{Tick: 200, MV: -500}, // at the exclusive end
		{Tick: 300, MV: -500}, // after the window
	})

	assert.False(t, res.Crossed)
	assert.Equal(t, int64(-500), res.Sample)
}

func TestThresholdBoundaryInclusive(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    -200,
		ExpectNegative: true,
		WindowStart:    0,
		WindowEnd:      10,
	}

	res := monitor.Evaluate(cfg, []monitor.Sample{{Tick: 1, MV: -200}})
	assert.True(t, res.Crossed, "a sample at the threshold counts")
}

func TestClosed(t *testing.T) {
	cfg := monitor.Config{
		Enabled:        true,
		ThresholdMV:    -200,
		ExpectNegative: true,
		WindowStart:    10,
		WindowEnd:      20,
	}

	eval := monitor.NewEvaluator(cfg)
	assert.False(t, eval.Closed(15))
	assert.True(t, eval.Closed(20))

	eval.Observe(12, -300)
	assert.True(t, eval.Closed(13), "a crossing closes the window early")
}

func TestFromSnapshot(t *testing.T) {
	regs := register.Defaults()
	regs.MonitorWindowStart = 1000
	regs.MonitorWindowDuration = 5000

	cfg, err := monitor.FromSnapshot(regs, 125)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, int64(-200), cfg.ThresholdMV)
	assert.True(t, cfg.ExpectNegative)
	assert.Equal(t, int64(125), cfg.WindowStart, "1000ns is 125 ticks at 125MHz")
	assert.Equal(t, int64(750), cfg.WindowEnd, "window end is start plus 625 ticks")
}
