package config

import (
	"os"
	"strings"

	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/timing"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel     = "info"
	DefaultDriver       = "sim"
	DefaultTickInterval = 1    // ms between daemon wakeups
	DefaultTicksPerWake = 1000 // controller ticks advanced per wakeup

	configEnvVar = "PROBECTL_CONFIG"
	configName   = "probectl"
)

type Config struct {
	// Controller time base, MHz. The register window check and all
	// interval arithmetic derive from this.
	ClockMHz uint32 `mapstructure:"clock_freq_mhz"`

	// Daemon loop pacing. The FSM is tick-counted, not wall-clocked; the
	// daemon advances TicksPerWake controller ticks every TickInterval ms.
	TickInterval int `mapstructure:"tick_interval"`
	TicksPerWake int `mapstructure:"ticks_per_wake"`

	// Probe driver name from the registry.
	Driver string `mapstructure:"driver"`

	// Monitor miss policy: fault the cycle (true, safe default) or flag
	// the miss and end benign (false).
	FaultOnMiss bool `mapstructure:"fault_on_miss"`

	LogLevel string `mapstructure:"log_level"`

	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`

	// Initial register values applied to the bank before the first tick,
	// keyed by register field name. Validation happens at apply time; an
	// out-of-range value refuses startup rather than running with a
	// half-applied table.
	Registers map[string]any `mapstructure:"registers"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("clock_freq_mhz", timing.DefaultClockMHz)
	v.SetDefault("tick_interval", DefaultTickInterval)
	v.SetDefault("ticks_per_wake", DefaultTicksPerWake)
	v.SetDefault("driver", DefaultDriver)
	v.SetDefault("fault_on_miss", true)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")

	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("driver", DefaultDriver, "Probe driver name")
	fs.Uint32("clock-freq-mhz", timing.DefaultClockMHz, "Controller clock frequency in MHz")
	fs.Bool("telemetry", false, "Enable cycle telemetry recording")
	fs.String("database", "", "Telemetry database path")
	fs.String("config", "", "Path to config file")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"log_level":      "log-level",
		"driver":         "driver",
		"clock_freq_mhz": "clock-freq-mhz",
		"telemetry":      "telemetry",
		"database":       "database",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	configPath := os.Getenv(configEnvVar)
	if flagPath, _ := fs.GetString("config"); flagPath != "" {
		configPath = flagPath
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithMessage(errors.ErrReadConfig,
				"Failed to read config file: "+err.Error())
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.WithMessage(errors.ErrReadConfig,
					"Failed to read config file: "+err.Error())
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.ClockMHz == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "clock_freq_mhz must be nonzero")
	}

	if c.TickInterval <= 0 || c.TicksPerWake <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, struct {
			TickInterval int
			TicksPerWake int
		}{c.TickInterval, c.TicksPerWake})
	}

	if c.Driver == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "driver must be set")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig,
			"telemetry enabled but no database path configured")
	}

	return nil
}

// Debug reports whether debug logging is configured.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Verbose reports whether info-level logging is configured.
func (c *Config) Verbose() bool {
	return strings.EqualFold(c.LogLevel, "info") || c.Debug()
}
