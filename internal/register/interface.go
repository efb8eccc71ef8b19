package register

// View is the read-only surface handed to components that must observe
// configuration but never mutate it (status reporting, telemetry).
type View interface {
	Get(field Field) (any, error)
	Snapshot() Registers
}

// Writer is the external configuration surface: validated, atomic writes
// by field name plus the read operations of View. The hardware feedback
// register is not reachable through Writer.
type Writer interface {
	View
	Set(field Field, value any) error
}
