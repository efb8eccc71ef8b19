package register

// Field names the 13 configuration registers plus the hardware-fed
// feedback register. Register access by field name is the programmatic
// surface exposed to configuration tooling.
type Field string

const (
	// Arming & lifecycle
	TriggerWaitTimeout Field = "trigger_wait_timeout" // seconds
	AutoRearmEnable    Field = "auto_rearm_enable"
	FaultClear         Field = "fault_clear"

	// Output drive
	TrigOutVoltage    Field = "trig_out_voltage"   // mV
	TrigOutDuration   Field = "trig_out_duration"  // ns
	IntensityVoltage  Field = "intensity_voltage"  // mV
	IntensityDuration Field = "intensity_duration" // ns
	CooldownInterval  Field = "cooldown_interval"  // µs

	// Probe monitoring
	ProbeMonitorFeedback    Field = "probe_monitor_feedback" // mV, read-only
	MonitorEnable           Field = "monitor_enable"
	MonitorThresholdVoltage Field = "monitor_threshold_voltage" // mV
	MonitorExpectNegative   Field = "monitor_expect_negative"
	MonitorWindowStart      Field = "monitor_window_start"    // ns
	MonitorWindowDuration   Field = "monitor_window_duration" // ns
)

// Registers holds a consistent copy of every register value. A snapshot
// of this struct is handed to the controller at arm time so mid-cycle
// writes cannot corrupt an in-progress pulse.
type Registers struct {
	TriggerWaitTimeout int64 // s
	AutoRearmEnable    bool
	FaultClear         bool

	TrigOutVoltage    int64 // mV
	TrigOutDuration   int64 // ns
	IntensityVoltage  int64 // mV
	IntensityDuration int64 // ns
	CooldownInterval  int64 // µs

	ProbeMonitorFeedback    int64 // mV
	MonitorEnable           bool
	MonitorThresholdVoltage int64 // mV
	MonitorExpectNegative   bool
	MonitorWindowStart      int64 // ns
	MonitorWindowDuration   int64 // ns
}

// Defaults returns the power-on register values.
func Defaults() Registers {
	return Registers{
		TriggerWaitTimeout:      2,
		AutoRearmEnable:         false,
		FaultClear:              false,
		TrigOutVoltage:          0,
		TrigOutDuration:         100,
		IntensityVoltage:        0,
		IntensityDuration:       200,
		CooldownInterval:        10,
		ProbeMonitorFeedback:    0,
		MonitorEnable:           true,
		MonitorThresholdVoltage: -200,
		MonitorExpectNegative:   true,
		MonitorWindowStart:      0,
		MonitorWindowDuration:   5000,
	}
}

type bounds struct {
	min, max int64
	unit     string
}

// Numeric field bounds. Boolean fields are absent; they validate by type
// alone.
var fieldBounds = map[Field]bounds{
	TriggerWaitTimeout:      {0, 3600, "s"},
	TrigOutVoltage:          {-5000, 5000, "mV"},
	TrigOutDuration:         {20, 50000, "ns"},
	IntensityVoltage:        {-5000, 5000, "mV"},
	IntensityDuration:       {20, 50000, "ns"},
	CooldownInterval:        {1, 500000, "us"},
	ProbeMonitorFeedback:    {-5000, 5000, "mV"},
	MonitorThresholdVoltage: {-5000, 5000, "mV"},
	MonitorWindowStart:      {0, 2_000_000_000, "ns"},
	MonitorWindowDuration:   {100, 2_000_000_000, "ns"},
}

var boolFields = map[Field]bool{
	AutoRearmEnable:       true,
	FaultClear:            true,
	MonitorEnable:         true,
	MonitorExpectNegative: true,
}
