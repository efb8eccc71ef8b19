package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/probelab/probectl/internal/config"
	"github.com/probelab/probectl/internal/controller"
	"github.com/probelab/probectl/internal/logger"
	"github.com/probelab/probectl/internal/pid"
	"github.com/probelab/probectl/internal/probe"
	"github.com/probelab/probectl/internal/register"
	"github.com/probelab/probectl/internal/telemetry"
)

var (
	cfg       *config.Config
	bank      *register.Bank
	ctrl      *controller.Controller
	drv       probe.Driver
	collector telemetry.Collector
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug(), cfg.Verbose(), logger.IsService())
	logger.Debug().Msg("Config loaded")

	drv, err = probe.New(cfg.Driver)
	if err != nil {
		logger.Fatal().Err(err).Strs("available", probe.List()).Msg("unknown probe driver")
	}
	if err := drv.Initialize(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize probe")
	}

	missPolicy := controller.FaultOnMiss
	if !cfg.FaultOnMiss {
		missPolicy = controller.ReportOnly
	}

	bank = register.New(cfg.ClockMHz)
	if err := applyRegisters(bank, cfg.Registers); err != nil {
		logger.Fatal().Err(err).Msg("invalid register value in config")
	}

	ctrl = controller.New(bank, controller.Config{
		ClockMHz:   cfg.ClockMHz,
		MissPolicy: missPolicy,
	})

	collector, err = telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
}

// applyRegisters writes the [registers] table from the config file into
// the bank. The bank owns validation; the first rejected field aborts.
func applyRegisters(w register.Writer, values map[string]any) error {
	for name, value := range values {
		if i, ok := value.(int); ok {
			value = int64(i)
		}
		if err := w.Set(register.Field(name), value); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pid file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := loop(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	cleanup()
}

// loop advances the tick-counted FSM in batches. The controller's time
// base is ticks, not wall time; the daemon wakes every TickInterval ms
// and runs TicksPerWake ticks with freshly sampled inputs.
func loop(ctx context.Context) error {
	interval := time.Duration(cfg.TickInterval) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	feedback, _ := drv.(probe.FeedbackSource)
	trigger, _ := drv.(probe.TriggerSource)
	prev := controller.Idle

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for i := 0; i < cfg.TicksPerWake; i++ {
				in := controller.Inputs{
					Enable:        true,
					Arm:           true, // service stands armed awaiting the external trigger
					Disarm:        disarmRequested.Swap(false),
					HardwareFault: drv.Status().Fault,
				}
				if trigger != nil {
					in.Trigger = trigger.TriggerPending()
				}
				if feedback != nil {
					if mv, ok := feedback.Sample(); ok {
						in.Feedback = &mv
					}
				}

				out := ctrl.Tick(in)
				if out.State != prev {
					onTransition(ctx, prev, out)
					prev = out.State
				}
			}
		}
	}
}

// onTransition keeps the vendor driver in step with the FSM and records
// cycle outcomes.
func onTransition(ctx context.Context, from controller.State, out controller.Outputs) {
	status := ctrl.Status()

	logger.Info().
		Str("from", from.String()).
		Str("to", out.State.String()).
		Str("cause", string(out.Cause)).
		Msg("state transition")

	switch out.State {
	case controller.Armed:
		snap := status.Snapshot
		if err := drv.SetVoltage(snap.IntensityVoltage); err != nil {
			logger.Error().Err(err).Msg("probe rejected voltage")
		}
		if err := drv.SetPulseWidth(snap.IntensityDuration); err != nil {
			logger.Error().Err(err).Msg("probe rejected pulse width")
		}
		if err := drv.Arm(); err != nil {
			logger.Error().Err(err).Msg("probe arm failed")
		}
	case controller.Firing:
		if err := drv.Trigger(); err != nil {
			logger.Error().Err(err).Msg("probe trigger failed")
		}
	case controller.Idle, controller.Fault:
		if err := drv.Disarm(); err != nil {
			logger.Error().Err(err).Msg("probe disarm failed")
		}
	}

	// A cycle outcome is anything that leaves COOLDOWN, plus a trigger
	// wait that timed out.
	if from == controller.Cooldown || out.Timeout {
		recordCycle(ctx, status)
	}
}

func recordCycle(ctx context.Context, status controller.Status) {
	snap := status.Snapshot
	record := &telemetry.CycleRecord{
		Timestamp:   time.Now(),
		State:       status.State.String(),
		Cause:       string(status.Cause),
		Fired:       status.Monitor.Crossed || !snap.MonitorEnable,
		Crossed:     status.Monitor.Crossed,
		CrossTick:   status.Monitor.CrossTick,
		SampleMV:    status.Monitor.Sample,
		TrigOutMV:   snap.TrigOutVoltage,
		TrigOutNS:   snap.TrigOutDuration,
		IntensityMV: snap.IntensityVoltage,
		IntensityNS: snap.IntensityDuration,
		CooldownUS:  snap.CooldownInterval,
	}

	if err := collector.Record(ctx, record); err != nil {
		logger.Error().Err(err).Msg("failed to record cycle")
	}
}

// disarmRequested is set by SIGUSR1 and consumed by the tick loop as the
// controller's disarm input.
var disarmRequested atomic.Bool

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	for sig := range sigs {
		if sig == syscall.SIGUSR1 {
			logger.Info().Msg("Disarm requested.")
			disarmRequested.Store(true)
			continue
		}

		logger.Info().Msg("Received termination signal.")
		cancel()

		return
	}
}

func cleanup() {
	if err := drv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("failed to shut down probe")
	}
	if err := collector.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close telemetry")
	}
	logger.Info().Msg("Exiting...")
}
