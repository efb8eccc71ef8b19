package register

import "github.com/probelab/probectl/internal/errors"

const (
	// Validation errors
	ErrUnknownField = errors.ErrorCode("register_unknown_field")
	ErrWrongType    = errors.ErrorCode("register_wrong_type")
	ErrOutOfRange   = errors.ErrorCode("register_out_of_range")
	ErrReadOnly     = errors.ErrorCode("register_read_only")

	// Cross-field validation errors
	ErrWindowOverflow = errors.ErrorCode("register_window_overflow")
)

// RangeViolation is attached to out-of-range errors so callers see the
// offending value alongside the valid bounds.
type RangeViolation struct {
	Field Field
	Value int64
	Min   int64
	Max   int64
	Unit  string
}
