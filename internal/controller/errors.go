package controller

import "github.com/probelab/probectl/internal/errors"

const (
	// ErrWindowOutlivesCycle rejects an arm whose monitor window extends
	// past the last cooldown tick; samples beyond that point would never
	// be observed and the cycle would always score a miss.
	ErrWindowOutlivesCycle = errors.ErrorCode("controller_window_outlives_cycle")
)
