package pulse

import (
	"github.com/probelab/probectl/internal/register"
	"github.com/probelab/probectl/internal/timing"
)

// Waveform is a drive descriptor consumed by the physical driver stage: a
// voltage held for a number of controller ticks.
type Waveform struct {
	VoltageMV int64
	Ticks     int64
}

// Drive is the pair of waveforms produced for one firing cycle.
type Drive struct {
	TrigOut   Waveform
	Intensity Waveform
}

// Shape converts the arm-time snapshot's voltage and duration registers
// into the trigger-out and intensity waveform descriptors.
func Shape(regs register.Registers, clockMHz uint32) (Drive, error) {
	trigTicks, err := timing.ToTicks(regs.TrigOutDuration, timing.Nanoseconds, clockMHz)
	if err != nil {
		return Drive{}, err
	}

	intensityTicks, err := timing.ToTicks(regs.IntensityDuration, timing.Nanoseconds, clockMHz)
	if err != nil {
		return Drive{}, err
	}

	return Drive{
		TrigOut: Waveform{
			VoltageMV: regs.TrigOutVoltage,
			Ticks:     trigTicks,
		},
		Intensity: Waveform{
			VoltageMV: regs.IntensityVoltage,
			Ticks:     intensityTicks,
		},
	}, nil
}

// LongestTicks returns the duration of the longer of the two waveforms.
// Feedback sampling begins when both drives have completed.
func (d Drive) LongestTicks() int64 {
	if d.TrigOut.Ticks > d.Intensity.Ticks {
		return d.TrigOut.Ticks
	}

	return d.Intensity.Ticks
}
