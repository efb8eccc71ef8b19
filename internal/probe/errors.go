package probe

import "github.com/probelab/probectl/internal/errors"

const (
	ErrUnknownDriver   = errors.ErrorCode("probe_unknown_driver")
	ErrNotInitialized  = errors.ErrorCode("probe_not_initialized")
	ErrNotArmed        = errors.ErrorCode("probe_not_armed")
	ErrVoltageRange    = errors.ErrorCode("probe_voltage_out_of_range")
	ErrPulseWidthRange = errors.ErrorCode("probe_pulse_width_out_of_range")
)
