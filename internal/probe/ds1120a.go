package probe

import (
	"sync"
	"time"

	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/logger"
)

func init() {
	Register("ds1120a", func() Driver { return NewDS1120A() })
}

// DS1120A drives the Riscure DS1120A EMFI probe. It is the reference
// vendor adapter: capability-clamped configuration over the generic
// Driver boundary. The transport to the physical unit lives behind the
// analog driver stage and is out of this core's hands; this adapter owns
// arming discipline and request validation.
type DS1120A struct {
	mu          sync.Mutex
	caps        Capabilities
	initialized bool
	armed       bool
	voltageMV   int64
	widthNS     int64
	lastTrigger time.Time
}

func NewDS1120A() *DS1120A {
	return &DS1120A{
		// Digital glitch port electrical limits.
		caps: Capabilities{
			MinVoltageMV:            0,
			MaxVoltageMV:            3300,
			MinPulseWidthNS:         10,
			MaxPulseWidthNS:         10000,
			PulseWidthResolutionNS:  1,
			SupportsExternalTrigger: true,
			SupportsInternalTrigger: false,
		},
	}
}

func (d *DS1120A) Capabilities() Capabilities {
	return d.caps
}

func (d *DS1120A) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	// Safe defaults before the first arm.
	d.voltageMV = 0
	d.widthNS = 100
	d.initialized = true

	logger.Info().
		Int64("min_mv", d.caps.MinVoltageMV).
		Int64("max_mv", d.caps.MaxVoltageMV).
		Msg("ds1120a initialized")

	return nil
}

func (d *DS1120A) SetVoltage(millivolts int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	if err := CheckVoltage(d.caps, millivolts); err != nil {
		return err
	}
	d.voltageMV = millivolts

	return nil
}

func (d *DS1120A) SetPulseWidth(widthNS int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	if err := CheckPulseWidth(d.caps, widthNS); err != nil {
		return err
	}
	d.widthNS = widthNS

	return nil
}

func (d *DS1120A) Arm() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	d.armed = true
	d.lastTrigger = time.Time{}

	return nil
}

func (d *DS1120A) Disarm() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.armed = false

	return nil
}

// Trigger issues a software trigger. The DS1120A fires primarily on its
// external hardware trigger; the software path exists for bring-up.
func (d *DS1120A) Trigger() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed {
		return errors.New().New(ErrNotArmed)
	}
	d.lastTrigger = time.Now()

	return nil
}

func (d *DS1120A) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{
		Armed:        d.armed,
		Ready:        d.initialized && !d.armed,
		VoltageMV:    d.voltageMV,
		PulseWidthNS: d.widthNS,
	}
	if !d.lastTrigger.IsZero() {
		st.SinceTriggerS = time.Since(d.lastTrigger).Seconds()
	}

	return st
}

func (d *DS1120A) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.armed = false
	d.initialized = false

	logger.Debug().Msg("ds1120a shutdown")

	return nil
}
