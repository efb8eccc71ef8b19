package pulse_test

import (
	"testing"

	"github.com/probelab/probectl/internal/pulse"
	"github.com/probelab/probectl/internal/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	regs := register.Defaults()
	regs.TrigOutVoltage = 3300
	regs.TrigOutDuration = 100
	regs.IntensityVoltage = 5000
	regs.IntensityDuration = 200

	drive, err := pulse.Shape(regs, 125)
	require.NoError(t, err)

	assert.Equal(t, int64(3300), drive.TrigOut.VoltageMV)
	assert.Equal(t, int64(12), drive.TrigOut.Ticks, "100ns truncates to 12 ticks at 125MHz")
	assert.Equal(t, int64(5000), drive.Intensity.VoltageMV)
	assert.Equal(t, int64(25), drive.Intensity.Ticks, "200ns is 25 ticks at 125MHz")
}

func TestLongestTicks(t *testing.T) {
	drive := pulse.Drive{
		TrigOut:   pulse.Waveform{Ticks: 12},
		Intensity: pulse.Waveform{Ticks: 25},
	}
	assert.Equal(t, int64(25), drive.LongestTicks())

	drive.TrigOut.Ticks = 40
	assert.Equal(t, int64(40), drive.LongestTicks())
}

func TestNegativeVoltagesPreserved(t *testing.T) {
	regs := register.Defaults()
	regs.TrigOutVoltage = -1200
	regs.IntensityVoltage = -4500

	drive, err := pulse.Shape(regs, 125)
	require.NoError(t, err)

	assert.Equal(t, int64(-1200), drive.TrigOut.VoltageMV)
	assert.Equal(t, int64(-4500), drive.Intensity.VoltageMV)
}
