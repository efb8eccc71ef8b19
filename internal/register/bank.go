package register

import (
	"fmt"
	"sync"

	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/timing"
)

// Bank is the validated register store. It may be written by an
// asynchronous configuration path concurrently with the controller's tick
// evaluation; the RWMutex is the only synchronization between the two.
type Bank struct {
	mu       sync.RWMutex
	regs     Registers
	clockMHz uint32
}

// New creates a Bank holding power-on defaults. clockMHz is needed for the
// cross-field monitor window check, which is expressed in ticks.
func New(clockMHz uint32) *Bank {
	if clockMHz == 0 {
		clockMHz = timing.DefaultClockMHz
	}

	return &Bank{
		regs:     Defaults(),
		clockMHz: clockMHz,
	}
}

// Set validates and stores a register value. Rejection is atomic: on any
// error the previous value is retained. The feedback register has no
// public setter.
func (b *Bank) Set(field Field, value any) error {
	errFactory := errors.New()

	if field == ProbeMonitorFeedback {
		return errFactory.WithData(ErrReadOnly, string(field))
	}

	if boolFields[field] {
		v, ok := value.(bool)
		if !ok {
			return errFactory.WithData(ErrWrongType,
				fmt.Sprintf("%s must be bool, got %T", field, value))
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		b.setBool(field, v)

		return nil
	}

	lim, known := fieldBounds[field]
	if !known {
		return errFactory.WithData(ErrUnknownField, string(field))
	}

	v, ok := toInt64(value)
	if !ok {
		return errFactory.WithData(ErrWrongType,
			fmt.Sprintf("%s must be an integer, got %T", field, value))
	}

	if v < lim.min || v > lim.max {
		return errFactory.WithData(ErrOutOfRange, RangeViolation{
			Field: field,
			Value: v,
			Min:   lim.min,
			Max:   lim.max,
			Unit:  lim.unit,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if field == MonitorWindowStart || field == MonitorWindowDuration {
		start, duration := b.regs.MonitorWindowStart, b.regs.MonitorWindowDuration
		if field == MonitorWindowStart {
			start = v
		} else {
			duration = v
		}

		if err := b.checkWindow(start, duration); err != nil {
			return err
		}
	}

	b.setInt(field, v)

	return nil
}

// checkWindow rejects monitor window configurations whose end would not
// be representable in the hardware tick counter. Evaluation never has to
// cope with a degenerate window because of this.
func (b *Bank) checkWindow(startNS, durationNS int64) error {
	errFactory := errors.New()

	endTicks, err := timing.ToTicks(startNS+durationNS, timing.Nanoseconds, b.clockMHz)
	if err != nil {
		return errFactory.Wrap(ErrWindowOverflow, err)
	}

	if endTicks > timing.MaxTicks {
		return errFactory.WithData(ErrWindowOverflow, RangeViolation{
			Field: MonitorWindowDuration,
			Value: endTicks,
			Min:   0,
			Max:   timing.MaxTicks,
			Unit:  "ticks",
		})
	}

	return nil
}

// Get returns the current value of a register as int64 or bool.
func (b *Bank) Get(field Field) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch field {
	case TriggerWaitTimeout:
		return b.regs.TriggerWaitTimeout, nil
	case AutoRearmEnable:
		return b.regs.AutoRearmEnable, nil
	case FaultClear:
		return b.regs.FaultClear, nil
	case TrigOutVoltage:
		return b.regs.TrigOutVoltage, nil
	case TrigOutDuration:
		return b.regs.TrigOutDuration, nil
	case IntensityVoltage:
		return b.regs.IntensityVoltage, nil
	case IntensityDuration:
		return b.regs.IntensityDuration, nil
	case CooldownInterval:
		return b.regs.CooldownInterval, nil
	case ProbeMonitorFeedback:
		return b.regs.ProbeMonitorFeedback, nil
	case MonitorEnable:
		return b.regs.MonitorEnable, nil
	case MonitorThresholdVoltage:
		return b.regs.MonitorThresholdVoltage, nil
	case MonitorExpectNegative:
		return b.regs.MonitorExpectNegative, nil
	case MonitorWindowStart:
		return b.regs.MonitorWindowStart, nil
	case MonitorWindowDuration:
		return b.regs.MonitorWindowDuration, nil
	}

	return nil, errors.New().WithData(ErrUnknownField, string(field))
}

// Snapshot returns a consistent copy of all registers.
func (b *Bank) Snapshot() Registers {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.regs
}

// UpdateFeedback is the internal hardware-update path for the read-only
// feedback register. Only the controller calls this, after each physical
// sample.
func (b *Bank) UpdateFeedback(millivolts int64) error {
	lim := fieldBounds[ProbeMonitorFeedback]
	if millivolts < lim.min || millivolts > lim.max {
		return errors.New().WithData(ErrOutOfRange, RangeViolation{
			Field: ProbeMonitorFeedback,
			Value: millivolts,
			Min:   lim.min,
			Max:   lim.max,
			Unit:  lim.unit,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs.ProbeMonitorFeedback = millivolts

	return nil
}

func (b *Bank) setBool(field Field, v bool) {
	switch field {
	case AutoRearmEnable:
		b.regs.AutoRearmEnable = v
	case FaultClear:
		b.regs.FaultClear = v
	case MonitorEnable:
		b.regs.MonitorEnable = v
	case MonitorExpectNegative:
		b.regs.MonitorExpectNegative = v
	}
}

func (b *Bank) setInt(field Field, v int64) {
	switch field {
	case TriggerWaitTimeout:
		b.regs.TriggerWaitTimeout = v
	case TrigOutVoltage:
		b.regs.TrigOutVoltage = v
	case TrigOutDuration:
		b.regs.TrigOutDuration = v
	case IntensityVoltage:
		b.regs.IntensityVoltage = v
	case IntensityDuration:
		b.regs.IntensityDuration = v
	case CooldownInterval:
		b.regs.CooldownInterval = v
	case MonitorWindowStart:
		b.regs.MonitorWindowStart = v
	case MonitorWindowDuration:
		b.regs.MonitorWindowDuration = v
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > uint64(maxInt64) {
			return 0, false
		}
		return int64(v), true
	}

	return 0, false
}

const maxInt64 = int64(^uint64(0) >> 1)
