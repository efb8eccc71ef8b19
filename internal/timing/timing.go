package timing

import (
	"github.com/probelab/probectl/internal/errors"
)

// Unit identifies a physical time unit accepted by the converters.
type Unit string

const (
	Nanoseconds  Unit = "ns"
	Microseconds Unit = "us"
	Milliseconds Unit = "ms"
	Seconds      Unit = "s"
)

const (
	// DefaultClockMHz is the controller time base used by the reference
	// hardware (8 ns tick period).
	DefaultClockMHz = 125

	// MaxTicks is the largest interval the hardware tick counters can
	// represent (32-bit counter).
	MaxTicks int64 = 1<<32 - 1
)

const (
	ErrInvalidUnit  = errors.ErrorCode("timing_invalid_unit")
	ErrInvalidClock = errors.ErrorCode("timing_invalid_clock")
	ErrOverflow     = errors.ErrorCode("timing_overflow")
)

var nanosPerUnit = map[Unit]int64{
	Nanoseconds:  1,
	Microseconds: 1_000,
	Milliseconds: 1_000_000,
	Seconds:      1_000_000_000,
}

// ToTicks converts a physical time value to controller ticks at the given
// clock frequency. Conversion truncates toward zero: a value that is not a
// multiple of the tick period loses the remainder, and FromTicks on the
// result does not recover the original value.
func ToTicks(value int64, unit Unit, clockMHz uint32) (int64, error) {
	errFactory := errors.New()

	if clockMHz == 0 {
		return 0, errFactory.New(ErrInvalidClock)
	}

	factor, ok := nanosPerUnit[unit]
	if !ok {
		return 0, errFactory.WithData(ErrInvalidUnit, string(unit))
	}

	if value != 0 && (value > maxInt64/factor || value < -maxInt64/factor) {
		return 0, errFactory.WithData(ErrOverflow, value)
	}
	nanos := value * factor

	mhz := int64(clockMHz)
	if nanos != 0 && (nanos > maxInt64/mhz || nanos < -maxInt64/mhz) {
		return 0, errFactory.WithData(ErrOverflow, nanos)
	}

	return nanos * mhz / 1000, nil
}

// FromTicks converts controller ticks back to a physical time value in the
// given unit, truncating toward zero. Exact for tick counts whose duration
// is a whole multiple of the unit.
func FromTicks(ticks int64, unit Unit, clockMHz uint32) (int64, error) {
	errFactory := errors.New()

	if clockMHz == 0 {
		return 0, errFactory.New(ErrInvalidClock)
	}

	factor, ok := nanosPerUnit[unit]
	if !ok {
		return 0, errFactory.WithData(ErrInvalidUnit, string(unit))
	}

	if ticks != 0 && (ticks > maxInt64/1000 || ticks < -maxInt64/1000) {
		return 0, errFactory.WithData(ErrOverflow, ticks)
	}

	nanos := ticks * 1000 / int64(clockMHz)

	return nanos / factor, nil
}

const maxInt64 = int64(^uint64(0) >> 1)
