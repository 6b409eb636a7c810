package servo

import "errors"

var (
	// ErrUnknownServo is returned for names not in the catalog.
	// Distinct from hardware failure: no I/O is attempted.
	ErrUnknownServo = errors.New("servo: unknown servo")

	// ErrAngleOutOfRange is returned for angles outside the configured
	// limits. Rejected before any I/O, never clamped.
	ErrAngleOutOfRange = errors.New("servo: angle out of range")
)
