package gesture

import "errors"

var (
	// ErrUnknownGesture is returned when a name is not in the discrete
	// catalog. Treated by callers as "unknown", not a hardware failure.
	ErrUnknownGesture = errors.New("gesture: unknown gesture")

	// ErrUnknownMood is returned when a name is not in the mood catalog.
	ErrUnknownMood = errors.New("gesture: unknown mood")
)
