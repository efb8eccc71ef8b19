package controller

import (
	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/logger"
	"github.com/probelab/probectl/internal/monitor"
	"github.com/probelab/probectl/internal/pulse"
	"github.com/probelab/probectl/internal/register"
	"github.com/probelab/probectl/internal/timing"
)

// Config fixes the controller time base and the monitor miss policy for
// the life of the controller.
type Config struct {
	ClockMHz   uint32
	MissPolicy MissPolicy
}

// Controller is the tick-driven probe FSM. Exactly one state transition
// evaluation happens per Tick call and nothing inside a tick blocks. The
// register bank is the only shared-mutable resource; the controller takes
// a snapshot at IDLE→ARMED and reads only that snapshot until the cycle
// completes.
type Controller struct {
	bank *register.Bank
	cfg  Config

	state      State
	stateTicks int64
	cycleTick  int64 // ticks since the trigger event

	snapshot      register.Registers
	drive         pulse.Drive
	eval          *monitor.Evaluator
	timeoutTicks  int64
	cooldownTicks int64

	faultLatched   bool
	lastReady      bool
	cause          Cause
	hwFault        bool
	pendingDisarm  bool
	lastTimeout    bool
	lastFaultClear bool
	lastResult     monitor.Result
}

// New creates a controller in IDLE holding a read view of the bank plus
// exclusive write access to the feedback register.
func New(bank *register.Bank, cfg Config) *Controller {
	if cfg.ClockMHz == 0 {
		cfg.ClockMHz = timing.DefaultClockMHz
	}

	return &Controller{
		bank:      bank,
		cfg:       cfg,
		state:     Idle,
		lastReady: true,
	}
}

// Status reports the externally visible controller state.
type Status struct {
	State           State
	ReadyForUpdates bool
	Cause           Cause
	FaultLatched    bool
	Timeout         bool
	Monitor         monitor.Result
	Snapshot        register.Registers
}

func (c *Controller) Status() Status {
	return Status{
		State:           c.state,
		ReadyForUpdates: c.lastReady,
		Cause:           c.cause,
		FaultLatched:    c.faultLatched,
		Timeout:         c.lastTimeout,
		Monitor:         c.lastResult,
		Snapshot:        c.snapshot,
	}
}

// Tick advances the FSM by one controller time step. While the global
// enable input is low the FSM holds its state, timers do not advance, and
// outputs are held at zero (supervisory halt).
func (c *Controller) Tick(in Inputs) Outputs {
	out := Outputs{ReadyForUpdates: true}

	if !in.Enable {
		c.fillStatus(&out)
		c.lastReady = out.ReadyForUpdates
		return out
	}

	if in.Feedback != nil {
		if err := c.bank.UpdateFeedback(*in.Feedback); err != nil {
			logger.Warn().Err(err).Msg("feedback sample rejected")
		}
	}

	if in.HardwareFault {
		c.hwFault = true
	}

	regs := c.bank.Snapshot()
	risingClear := regs.FaultClear && !c.lastFaultClear
	c.lastFaultClear = regs.FaultClear

	switch c.state {
	case Idle:
		c.tickIdle(in, &out)
	case Armed:
		c.tickArmed(in, &out)
	case Firing:
		c.tickFiring(in, &out)
	case Cooldown:
		c.tickCooldown(in, regs, &out)
	case Fault:
		c.tickFault(risingClear)
	}

	c.fillStatus(&out)
	c.lastReady = out.ReadyForUpdates

	return out
}

func (c *Controller) fillStatus(out *Outputs) {
	out.State = c.state
	out.FaultLatched = c.faultLatched
	out.Cause = c.cause
	out.Timeout = c.lastTimeout
}

func (c *Controller) tickIdle(in Inputs, out *Outputs) {
	if c.hwFault {
		c.latchFault(CauseHardwareFault)
		return
	}

	if in.Arm && !c.faultLatched {
		if err := c.arm(); err != nil {
			logger.Error().Err(err).Msg("arm refused")
			return
		}
		// Snapshot capture is the one window where writes are not accepted.
		out.ReadyForUpdates = false
	}
}

func (c *Controller) tickArmed(in Inputs, out *Outputs) {
	if c.hwFault {
		c.latchFault(CauseHardwareFault)
		return
	}

	if in.Disarm {
		// No pulse in flight; disarming while armed is always safe.
		c.toIdle()
		return
	}

	if in.Trigger {
		c.state = Firing
		c.stateTicks = 0
		c.cycleTick = 0
		c.emitDrive(out)
		c.stateTicks++
		c.cycleTick++

		logger.Debug().Msg("trigger accepted, firing")

		return
	}

	if c.stateTicks >= c.timeoutTicks {
		// A trigger timeout is a normal, reportable condition, never a fault.
		c.lastTimeout = true
		c.cause = CauseTriggerTimeout
		c.toIdle()

		logger.Info().Int64("waited_ticks", c.stateTicks).Msg("trigger wait timed out")

		return
	}

	c.stateTicks++
}

func (c *Controller) tickFiring(in Inputs, out *Outputs) {
	if in.Disarm {
		// Deferred: the pulse completes before any state change.
		c.pendingDisarm = true
	}

	if c.stateTicks >= c.drive.LongestTicks() {
		c.state = Cooldown
		c.stateTicks = 0
		c.observe(in)
		c.stateTicks++
		c.cycleTick++

		return
	}

	c.emitDrive(out)
	c.stateTicks++
	c.cycleTick++
}

func (c *Controller) tickCooldown(in Inputs, regs register.Registers, out *Outputs) {
	if c.stateTicks >= c.cooldownTicks {
		c.finishCycle(in, regs, out)
		return
	}

	c.observe(in)
	c.stateTicks++
	c.cycleTick++
}

func (c *Controller) tickFault(risingClear bool) {
	if !risingClear {
		// Sticky: arm requests and configuration writes have no effect on
		// control until the fault is acknowledged.
		return
	}

	c.faultLatched = false
	c.cause = CauseNone
	c.hwFault = false
	c.toIdle()

	logger.Info().Msg("fault cleared")
}

// finishCycle runs the cooldown-expiry decision: fault, auto-rearm, or
// idle. Clearing a fault later does not replay the cycle decided here.
func (c *Controller) finishCycle(in Inputs, regs register.Registers, out *Outputs) {
	c.lastResult = c.eval.Result()
	fired := c.eval.Fired()

	switch {
	case c.hwFault:
		c.latchFault(CauseHardwareFault)
		return
	case !fired && c.cfg.MissPolicy == FaultOnMiss:
		c.latchFault(CauseMonitorMiss)
		return
	case !fired:
		// ReportOnly: the miss is flagged but the cycle ends benign.
		c.cause = CauseMonitorMiss
	}

	if c.pendingDisarm {
		c.toIdle()
		return
	}

	if regs.AutoRearmEnable || in.Arm {
		if err := c.arm(); err != nil {
			logger.Error().Err(err).Msg("auto-rearm refused")
			c.toIdle()
			return
		}
		// Re-arming captures a fresh snapshot, same update blackout as
		// the IDLE→ARMED path.
		out.ReadyForUpdates = false
		return
	}

	c.toIdle()
}

// arm captures the register snapshot and derives everything the cycle
// needs from it: waveforms, monitor window, timeout and cooldown tick
// counts. Writes during FIRING/COOLDOWN will not affect this cycle.
func (c *Controller) arm() error {
	snap := c.bank.Snapshot()

	drive, err := pulse.Shape(snap, c.cfg.ClockMHz)
	if err != nil {
		return err
	}

	monCfg, err := monitor.FromSnapshot(snap, c.cfg.ClockMHz)
	if err != nil {
		return err
	}

	timeoutTicks, err := timing.ToTicks(snap.TriggerWaitTimeout, timing.Seconds, c.cfg.ClockMHz)
	if err != nil {
		return err
	}

	cooldownTicks, err := timing.ToTicks(snap.CooldownInterval, timing.Microseconds, c.cfg.ClockMHz)
	if err != nil {
		return err
	}

	// Observation ends with the cooldown; a window still open past the
	// last observable tick can never be satisfied.
	eval := monitor.NewEvaluator(monCfg)
	if !eval.Closed(drive.LongestTicks() + cooldownTicks) {
		return errors.New().WithData(ErrWindowOutlivesCycle, struct {
			WindowEndTick int64
			LastObserved  int64
		}{monCfg.WindowEnd, drive.LongestTicks() + cooldownTicks})
	}

	c.snapshot = snap
	c.drive = drive
	c.eval = eval
	c.timeoutTicks = timeoutTicks
	c.cooldownTicks = cooldownTicks

	c.state = Armed
	c.stateTicks = 0
	c.pendingDisarm = false
	c.lastTimeout = false
	c.cause = CauseNone

	logger.Debug().
		Int64("timeout_ticks", timeoutTicks).
		Int64("cooldown_ticks", cooldownTicks).
		Int64("trig_out_ticks", drive.TrigOut.Ticks).
		Int64("intensity_ticks", drive.Intensity.Ticks).
		Msg("armed")

	return nil
}

func (c *Controller) emitDrive(out *Outputs) {
	if c.stateTicks < c.drive.TrigOut.Ticks {
		out.TrigOutMV = c.drive.TrigOut.VoltageMV
	}
	if c.stateTicks < c.drive.Intensity.Ticks {
		out.IntensityMV = c.drive.Intensity.VoltageMV
	}
}

func (c *Controller) observe(in Inputs) {
	if in.Feedback != nil {
		c.eval.Observe(c.cycleTick, *in.Feedback)
	}
}

func (c *Controller) latchFault(cause Cause) {
	c.state = Fault
	c.stateTicks = 0
	c.faultLatched = true
	c.cause = cause

	logger.Warn().Str("cause", string(cause)).Msg("fault latched")
}

func (c *Controller) toIdle() {
	c.state = Idle
	c.stateTicks = 0
	c.pendingDisarm = false
}
