package timing_test

import (
	"testing"

	"github.com/probelab/probectl/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrationPair(t *testing.T) {
	// 125 MHz is the reference time base: 8 ns per tick.
	ticks, err := timing.ToTicks(1000, timing.Nanoseconds, 125)
	require.NoError(t, err)
	assert.Equal(t, int64(125), ticks, "Expected 1000ns to be 125 ticks at 125MHz")

	ns, err := timing.FromTicks(125, timing.Nanoseconds, 125)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ns, "Expected 125 ticks to be 1000ns at 125MHz")
}

func TestTruncationTowardZero(t *testing.T) {
	// 100 ns is not a multiple of the 8 ns tick period: 12.5 truncates to 12.
	ticks, err := timing.ToTicks(100, timing.Nanoseconds, 125)
	require.NoError(t, err)
	assert.Equal(t, int64(12), ticks)

	// The truncation is one-directional lossy: converting back does not
	// recover the original value.
	ns, err := timing.FromTicks(ticks, timing.Nanoseconds, 125)
	require.NoError(t, err)
	assert.Equal(t, int64(96), ns)
	assert.Less(t, ns, int64(100))
}

func TestUnitConversions(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		unit  timing.Unit
		want  int64
	}{
		{"microseconds", 10, timing.Microseconds, 1250},
		{"milliseconds", 1, timing.Milliseconds, 125000},
		{"seconds", 2, timing.Seconds, 250000000},
		{"zero", 0, timing.Nanoseconds, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timing.ToTicks(tt.value, tt.unit, 125)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTripExactAtMultiples(t *testing.T) {
	// Multiples of the tick period survive the round trip exactly.
	for _, ns := range []int64{8, 16, 800, 50000} {
		ticks, err := timing.ToTicks(ns, timing.Nanoseconds, 125)
		require.NoError(t, err)
		back, err := timing.FromTicks(ticks, timing.Nanoseconds, 125)
		require.NoError(t, err)
		assert.Equal(t, ns, back, "Expected %dns to round-trip exactly", ns)
	}
}

func TestInvalidUnit(t *testing.T) {
	_, err := timing.ToTicks(100, timing.Unit("fortnights"), 125)
	require.Error(t, err)

	_, err = timing.FromTicks(100, timing.Unit("fortnights"), 125)
	require.Error(t, err)
}

func TestInvalidClock(t *testing.T) {
	_, err := timing.ToTicks(100, timing.Nanoseconds, 0)
	require.Error(t, err)

	_, err = timing.FromTicks(100, timing.Nanoseconds, 0)
	require.Error(t, err)
}

func TestOverflowRejected(t *testing.T) {
	_, err := timing.ToTicks(int64(1)<<62, timing.Seconds, 125)
	require.Error(t, err)
}
