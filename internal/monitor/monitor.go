package monitor

import (
	"github.com/probelab/probectl/internal/register"
	"github.com/probelab/probectl/internal/timing"
)

// Config describes one observation window, measured in ticks from the
// trigger event. The register bank guarantees at write time that the
// window end is representable, so evaluation never sees a degenerate
// window.
type Config struct {
	Enabled        bool
	ThresholdMV    int64
	ExpectNegative bool
	WindowStart    int64 // ticks, inclusive
	WindowEnd      int64 // ticks, exclusive
}

// FromSnapshot derives the evaluator configuration from an arm-time
// register snapshot.
func FromSnapshot(regs register.Registers, clockMHz uint32) (Config, error) {
	start, err := timing.ToTicks(regs.MonitorWindowStart, timing.Nanoseconds, clockMHz)
	if err != nil {
		return Config{}, err
	}

	duration, err := timing.ToTicks(regs.MonitorWindowDuration, timing.Nanoseconds, clockMHz)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Enabled:        regs.MonitorEnable,
		ThresholdMV:    regs.MonitorThresholdVoltage,
		ExpectNegative: regs.MonitorExpectNegative,
		WindowStart:    start,
		WindowEnd:      start + duration,
	}, nil
}

// Result is produced once per firing cycle. CrossTick is meaningful only
// when Crossed is true. Sample is the last feedback value observed.
type Result struct {
	Crossed   bool
	CrossTick int64
	Sample    int64
}

// Evaluator consumes the feedback stream one sample per tick and decides
// whether the probe fired. It holds no reference to the register bank;
// the configuration is fixed for the cycle.
type Evaluator struct {
	cfg Config
	res Result
}

func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Observe records one feedback sample taken at the given tick offset from
// the trigger event. Samples outside the window update Sample but never
// count as a crossing.
func (e *Evaluator) Observe(tick, sampleMV int64) {
	if !e.cfg.Enabled {
		return
	}

	e.res.Sample = sampleMV

	if e.res.Crossed || tick < e.cfg.WindowStart || tick >= e.cfg.WindowEnd {
		return
	}

	if e.crosses(sampleMV) {
		e.res.Crossed = true
		e.res.CrossTick = tick
	}
}

func (e *Evaluator) crosses(sampleMV int64) bool {
	if e.cfg.ExpectNegative {
		return sampleMV <= e.cfg.ThresholdMV
	}

	return sampleMV >= e.cfg.ThresholdMV
}

// Closed reports whether the window can no longer produce a crossing at
// or after the given tick.
func (e *Evaluator) Closed(tick int64) bool {
	return !e.cfg.Enabled || e.res.Crossed || tick >= e.cfg.WindowEnd
}

// Result returns the verdict accumulated so far.
func (e *Evaluator) Result() Result {
	return e.res
}

// Fired reports whether the firing cycle is deemed successful. With
// monitoring disabled there is no crossing determination and the cycle is
// deemed successful; absence of monitoring is not a fault.
func (e *Evaluator) Fired() bool {
	if !e.cfg.Enabled {
		return true
	}

	return e.res.Crossed
}

// Evaluate runs a complete sample sequence through an evaluator. Samples
// are (tick, millivolt) pairs ordered by tick.
func Evaluate(cfg Config, samples []Sample) Result {
	e := NewEvaluator(cfg)
	for _, s := range samples {
		e.Observe(s.Tick, s.MV)
	}

	return e.Result()
}

// Sample is one feedback reading at a tick offset from the trigger.
type Sample struct {
	Tick int64
	MV   int64
}
