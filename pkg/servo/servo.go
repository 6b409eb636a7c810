// Package servo maps Rufus's named actuators to Arduino channels and
// provides the motion primitives built on the serial link: direct angle
// commands and open-loop smooth moves.
package servo

import "time"

// Name identifies a logical actuator.
type Name string

// Actuator names. Head is an alias for the pan servo.
const (
	Pan      Name = "pan"
	Head     Name = "head"
	LeftArm  Name = "left_arm"
	RightArm Name = "right_arm"
)

// RestAngle is the neutral position every actuator returns to.
const RestAngle = 90

// Actuator is a named logical device bound to a physical channel.
type Actuator struct {
	Name    Name
	Channel int
	Rest    int
}

// Limits bounds the accepted angle range. Out-of-range angles are
// rejected before any I/O, never clamped or passed through.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits is the standard hobby-servo range.
var DefaultLimits = Limits{Min: 0, Max: 180}

// DefaultCatalog returns the fixed actuator set, keyed by canonical
// name. Aliases are resolved separately; see DefaultAliases.
func DefaultCatalog() map[Name]Actuator {
	return map[Name]Actuator{
		Pan:      {Name: Pan, Channel: 2, Rest: RestAngle},
		LeftArm:  {Name: LeftArm, Channel: 4, Rest: RestAngle},
		RightArm: {Name: RightArm, Channel: 5, Rest: RestAngle},
	}
}

// DefaultAliases maps alternate names to canonical catalog names.
func DefaultAliases() map[Name]Name {
	return map[Name]Name{
		Head: Pan,
	}
}

// Motion defaults, matching the hand-tuned Arduino timings.
const (
	DefaultSmoothSteps = 10
	DefaultStepDelay   = 20 * time.Millisecond
)
