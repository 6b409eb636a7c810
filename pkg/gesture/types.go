// Package gesture holds the static catalog of Rufus's motion sequences
// and the player that performs them.
//
// Two flavors exist. Discrete gestures are waypoint lists sent straight
// to the servos with fixed inter-step pacing. Moods are composed smooth
// moves with hand-tuned step counts and pauses, always ending in a
// return to rest. Both catalogs are immutable process-wide data.
package gesture

import (
	"time"

	"github.com/teslashibe/go-rufus/pkg/servo"
)

// Name identifies a gesture or mood in the static catalog.
type Name string

// Discrete gestures.
const (
	Wave  Name = "wave"
	Nod   Name = "nod"
	Shake Name = "shake"
	Rest  Name = "rest"
)

// Moods. Happy, Sad, Excited, and Curious exist in both catalogs:
// as discrete sequences for Perform and as smooth moods for PerformMood.
const (
	Happy   Name = "happy"
	Sad     Name = "sad"
	Excited Name = "excited"
	Curious Name = "curious"
)

// Step is a single discrete waypoint: one servo, one target angle.
type Step struct {
	Servo servo.Name
	Angle int
}

// Sequence is an ordered list of discrete steps.
type Sequence []Step

// Segment is one smooth move within a mood: interpolate Servo to Angle
// over Steps interpolation steps, then pause before the next segment.
type Segment struct {
	Servo servo.Name
	Angle int
	Steps int
	Pause time.Duration
}

// Mood is an ordered list of smooth segments.
type Mood []Segment
