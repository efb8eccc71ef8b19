package probe

import "github.com/probelab/probectl/internal/errors"

// CheckVoltage validates a requested output voltage against the probe's
// capabilities.
func CheckVoltage(caps Capabilities, millivolts int64) error {
	if millivolts < caps.MinVoltageMV || millivolts > caps.MaxVoltageMV {
		return errors.New().WithData(ErrVoltageRange, struct {
			RequestedMV int64
			MinMV       int64
			MaxMV       int64
		}{millivolts, caps.MinVoltageMV, caps.MaxVoltageMV})
	}

	return nil
}

// CheckPulseWidth validates a requested pulse width against the probe's
// capabilities.
func CheckPulseWidth(caps Capabilities, widthNS int64) error {
	if widthNS < caps.MinPulseWidthNS || widthNS > caps.MaxPulseWidthNS {
		return errors.New().WithData(ErrPulseWidthRange, struct {
			RequestedNS int64
			MinNS       int64
			MaxNS       int64
		}{widthNS, caps.MinPulseWidthNS, caps.MaxPulseWidthNS})
	}

	return nil
}
