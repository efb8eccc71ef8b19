package probe

// Capabilities describes what a probe's hardware can do. Drivers build
// this once from their electrical specs; callers validate requested
// voltages and pulse widths against it before configuring the controller.
type Capabilities struct {
	MinVoltageMV int64
	MaxVoltageMV int64

	MinPulseWidthNS        int64
	MaxPulseWidthNS        int64
	PulseWidthResolutionNS int64

	SupportsExternalTrigger bool
	SupportsInternalTrigger bool
}

// Status is a point-in-time report from the probe hardware.
type Status struct {
	Armed         bool
	Ready         bool
	Fault         bool
	VoltageMV     int64
	PulseWidthNS  int64
	SinceTriggerS float64
}

// Driver is the vendor boundary. Probe-specific drivers implement this
// and register themselves by name; the controller core never talks to
// hardware directly.
type Driver interface {
	Capabilities() Capabilities
	Initialize() error
	SetVoltage(millivolts int64) error
	SetPulseWidth(widthNS int64) error
	Arm() error
	Disarm() error
	Trigger() error
	Status() Status
	Shutdown() error
}

// FeedbackSource is implemented by drivers that can deliver the probe
// monitor feedback stream. Drivers without feedback omit it; the monitor
// block is then disabled in configuration.
type FeedbackSource interface {
	Sample() (millivolts int64, ok bool)
}

// TriggerSource is implemented by drivers that surface the trigger event
// to the host. TriggerPending reports and consumes one pending event.
// Drivers whose trigger line is routed in hardware and never visible to
// the host omit it.
type TriggerSource interface {
	TriggerPending() bool
}
