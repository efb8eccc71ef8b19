package probe

import (
	"sync"
	"time"

	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/logger"
)

func init() {
	Register("sim", func() Driver { return NewSim() })
}

// Sim is a software probe used by the daemon when no hardware is attached
// and by tests. Arming schedules a synthetic external trigger event a few
// polls later; on trigger it synthesizes a negative-going feedback
// transient long enough to outlast the drive window, so an enabled
// monitor sees a crossing once observation begins.
type Sim struct {
	mu          sync.Mutex
	initialized bool
	armed       bool
	voltageMV   int64
	widthNS     int64
	lastTrigger time.Time
	pending     []int64
	trigPolls   int
}

// SimResponseMV is the synthesized feedback transient amplitude.
const SimResponseMV = -250

// SimTransientSamples is the synthesized transient length: one sample per
// poll, settling to zero afterwards.
const SimTransientSamples = 64

// simTriggerPolls is how many TriggerPending polls after arming the
// synthetic trigger event takes to arrive.
const simTriggerPolls = 3

func NewSim() *Sim {
	return &Sim{}
}

func (s *Sim) Capabilities() Capabilities {
	return Capabilities{
		MinVoltageMV:            -5000,
		MaxVoltageMV:            5000,
		MinPulseWidthNS:         20,
		MaxPulseWidthNS:         50000,
		PulseWidthResolutionNS:  1,
		SupportsExternalTrigger: true,
		SupportsInternalTrigger: true,
	}
}

func (s *Sim) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.voltageMV = 0
	s.widthNS = 100

	logger.Debug().Msg("sim probe initialized")

	return nil
}

func (s *Sim) SetVoltage(millivolts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	if err := CheckVoltage(s.Capabilities(), millivolts); err != nil {
		return err
	}
	s.voltageMV = millivolts

	return nil
}

func (s *Sim) SetPulseWidth(widthNS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	if err := CheckPulseWidth(s.Capabilities(), widthNS); err != nil {
		return err
	}
	s.widthNS = widthNS

	return nil
}

func (s *Sim) Arm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New().New(ErrNotInitialized)
	}
	s.armed = true
	s.trigPolls = simTriggerPolls

	return nil
}

func (s *Sim) Disarm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed = false
	s.trigPolls = 0

	return nil
}

// TriggerPending reports and consumes the synthetic trigger event, which
// arrives a fixed number of polls after each arm.
func (s *Sim) TriggerPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed || s.trigPolls == 0 {
		return false
	}

	s.trigPolls--

	return s.trigPolls == 0
}

func (s *Sim) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed {
		return errors.New().New(ErrNotArmed)
	}

	s.lastTrigger = time.Now()

	s.pending = s.pending[:0]
	for i := 0; i < SimTransientSamples; i++ {
		s.pending = append(s.pending, SimResponseMV)
	}
	s.pending = append(s.pending, 0)

	return nil
}

// Sample pops the next synthesized feedback value. Returns ok=false when
// the transient has fully settled and no trigger is pending.
func (s *Sim) Sample() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return 0, false
	}

	mv := s.pending[0]
	s.pending = s.pending[1:]

	return mv, true
}

func (s *Sim) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Armed:        s.armed,
		Ready:        s.initialized && !s.armed,
		VoltageMV:    s.voltageMV,
		PulseWidthNS: s.widthNS,
	}
	if !s.lastTrigger.IsZero() {
		st.SinceTriggerS = time.Since(s.lastTrigger).Seconds()
	}

	return st
}

func (s *Sim) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed = false
	s.initialized = false
	s.pending = nil
	s.trigPolls = 0

	return nil
}
