package controller

// State is the controller's FSM state. Encodings match the hardware
// state register, where FAULT occupies the all-ones pattern so a
// corrupted state word reads as faulted.
type State uint8

const (
	Idle     State = 0
	Armed    State = 1
	Firing   State = 2
	Cooldown State = 3
	Fault    State = 63
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Firing:
		return "firing"
	case Cooldown:
		return "cooldown"
	case Fault:
		return "fault"
	}

	return "unknown"
}

// Cause identifies why the controller reported a runtime condition or
// latched a fault. Runtime conditions are status, never errors.
type Cause string

const (
	CauseNone           Cause = ""
	CauseTriggerTimeout Cause = "trigger_timeout"
	CauseMonitorMiss    Cause = "monitor_miss"
	CauseHardwareFault  Cause = "hardware_fault"
)

// MissPolicy decides what an enabled monitor that saw no crossing does to
// the cycle. Unconfirmed firing is the unsafe condition for a
// fault-injection instrument, so FaultOnMiss is the default.
type MissPolicy int

const (
	FaultOnMiss MissPolicy = iota
	ReportOnly
)

// Inputs are the external signals sampled once per tick.
type Inputs struct {
	Enable        bool
	Arm           bool
	Trigger       bool
	Disarm        bool
	HardwareFault bool
	Feedback      *int64 // mV sample for this tick, nil when none
}

// Outputs report the controller's state and drive levels for one tick.
// TrigOutMV and IntensityMV are nonzero only inside a deliberate firing
// window.
type Outputs struct {
	State           State
	ReadyForUpdates bool
	Cause           Cause
	FaultLatched    bool
	Timeout         bool
	TrigOutMV       int64
	IntensityMV     int64
}
