package gesture

import (
	"fmt"
	"sort"
	"time"

	"github.com/teslashibe/go-rufus/pkg/servo"
)

// gestures is the discrete catalog. The angle sequences are hand-tuned
// against the physical build; keep them in sync with the mood catalog
// below when retuning.
var gestures = map[Name]Sequence{
	Wave: {
		{servo.Pan, 90}, {servo.RightArm, 70}, {servo.RightArm, 40},
		{servo.RightArm, 70}, {servo.RightArm, 40}, {servo.RightArm, 70},
		{servo.RightArm, 40}, {servo.LeftArm, 90}, {servo.RightArm, 90},
	},
	Nod: {
		{servo.Pan, 105}, {servo.Pan, 75}, {servo.Pan, 105}, {servo.Pan, 75}, {servo.Pan, 90},
	},
	Shake: {
		{servo.Pan, 65}, {servo.Pan, 115}, {servo.Pan, 65}, {servo.Pan, 115}, {servo.Pan, 90},
	},
	Happy: {
		{servo.LeftArm, 170}, {servo.RightArm, 170}, {servo.Pan, 75},
		{servo.Pan, 105}, {servo.Pan, 75}, {servo.Pan, 105},
		{servo.LeftArm, 90}, {servo.RightArm, 90}, {servo.Pan, 90},
	},
	Sad: {
		{servo.Pan, 50}, {servo.LeftArm, 60}, {servo.RightArm, 60},
		{servo.Pan, 50}, {servo.LeftArm, 90}, {servo.RightArm, 90}, {servo.Pan, 90},
	},
	Excited: {
		{servo.LeftArm, 170}, {servo.RightArm, 170}, {servo.Pan, 60},
		{servo.Pan, 120}, {servo.LeftArm, 90}, {servo.RightArm, 90}, {servo.Pan, 90},
	},
	Curious: {
		{servo.Pan, 70}, {servo.LeftArm, 110}, {servo.RightArm, 110},
		{servo.Pan, 70}, {servo.LeftArm, 90}, {servo.RightArm, 90}, {servo.Pan, 90},
	},
	Rest: {
		{servo.Pan, 90}, {servo.LeftArm, 90}, {servo.RightArm, 90},
	},
}

// restSegments returns the shared return-to-rest tail every mood ends
// with.
func restSegments() []Segment {
	return []Segment{
		{servo.Head, servo.RestAngle, servo.DefaultSmoothSteps, 0},
		{servo.LeftArm, servo.RestAngle, servo.DefaultSmoothSteps, 0},
		{servo.RightArm, servo.RestAngle, servo.DefaultSmoothSteps, 0},
	}
}

// moods is the smooth catalog used by the conversation loop.
var moods = map[Name]Mood{
	Happy: appendRest(Mood{
		{servo.LeftArm, 170, 5, 0},
		{servo.RightArm, 170, 5, 300 * time.Millisecond},
		{servo.Head, 75, 3, 100 * time.Millisecond},
		{servo.Head, 105, 3, 100 * time.Millisecond},
		{servo.Head, 75, 3, 100 * time.Millisecond},
		{servo.Head, 105, 3, 100 * time.Millisecond},
		{servo.Head, 75, 3, 100 * time.Millisecond},
		{servo.Head, 105, 3, 100 * time.Millisecond},
	}),
	Sad: appendRest(Mood{
		{servo.Head, 50, 10, 300 * time.Millisecond},
		{servo.LeftArm, 60, 10, 0},
		{servo.RightArm, 60, 10, 1500 * time.Millisecond},
	}),
	Excited: appendRest(Mood{
		{servo.LeftArm, 170, 3, 0},
		{servo.RightArm, 170, 3, 200 * time.Millisecond},
		{servo.Head, 60, 4, 0},
		{servo.Head, 120, 4, 0},
		{servo.Head, 60, 4, 0},
		{servo.Head, 120, 4, 0},
	}),
	Curious: appendRest(Mood{
		{servo.Head, 70, 10, 200 * time.Millisecond},
		{servo.LeftArm, 110, 10, 0},
		{servo.RightArm, 110, 10, 1000 * time.Millisecond},
	}),
}

func appendRest(m Mood) Mood {
	return append(m, restSegments()...)
}

// Lookup resolves a discrete gesture name to its sequence.
func Lookup(name Name) (Sequence, error) {
	seq, ok := gestures[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGesture, name)
	}
	return seq, nil
}

// LookupMood resolves a mood name to its segments.
func LookupMood(name Name) (Mood, error) {
	m, ok := moods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMood, name)
	}
	return m, nil
}

// Names returns all discrete gesture names, sorted alphabetically.
func Names() []Name {
	names := make([]Name, 0, len(gestures))
	for name := range gestures {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// MoodNames returns all mood names, sorted alphabetically.
func MoodNames() []Name {
	names := make([]Name, 0, len(moods))
	for name := range moods {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
