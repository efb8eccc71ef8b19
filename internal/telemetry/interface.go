package telemetry

import (
	"context"
	"time"
)

// Collector records completed or terminated firing cycles.
type Collector interface {
	Record(ctx context.Context, cycle *CycleRecord) error
	Close() error
}

// CycleRecord is written once per cycle outcome: a state the cycle ended
// in, the cause if any, the monitor verdict, and the arm-time drive
// configuration for traceability.
type CycleRecord struct {
	Timestamp time.Time
	State     string
	Cause     string

	Fired     bool
	Crossed   bool
	CrossTick int64
	SampleMV  int64

	TrigOutMV   int64
	TrigOutNS   int64
	IntensityMV int64
	IntensityNS int64
	CooldownUS  int64
}
