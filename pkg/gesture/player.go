package gesture

import (
	"sync"
	"time"

	"github.com/teslashibe/go-rufus/internal/log"
	"github.com/teslashibe/go-rufus/pkg/servo"
)

// Default pacing for discrete gesture playback.
const (
	DefaultStepDelay = 150 * time.Millisecond
)

// Mover is the motion surface the player drives.
// servo.Controller satisfies it.
type Mover interface {
	Set(name servo.Name, angle int) error
	SmoothMove(name servo.Name, target, steps int, stepDelay time.Duration) error
	Ready() bool
}

// Player resolves gesture and mood names and plays their sequences.
// A single mutex serializes whole sequences, so two concurrent Perform
// calls never interleave their servo commands on the wire.
type Player struct {
	mover Mover

	stepDelay  time.Duration // pause between discrete steps
	moveDelay  time.Duration // pause between smooth interpolation steps
	pauseScale float64       // scales mood segment pauses; 0 for tests

	mu sync.Mutex
}

// Option configures a Player.
type Option func(*Player)

// WithStepDelay sets the pause between discrete gesture steps.
func WithStepDelay(d time.Duration) Option {
	return func(p *Player) { p.stepDelay = d }
}

// WithMoveDelay sets the pause between smooth interpolation steps.
func WithMoveDelay(d time.Duration) Option {
	return func(p *Player) { p.moveDelay = d }
}

// WithPauseScale scales every mood segment pause. Use 0 in tests.
func WithPauseScale(scale float64) Option {
	return func(p *Player) { p.pauseScale = scale }
}

// NewPlayer creates a gesture player over the given mover.
func NewPlayer(mover Mover, opts ...Option) *Player {
	p := &Player{
		mover:      mover,
		stepDelay:  DefaultStepDelay,
		moveDelay:  servo.DefaultStepDelay,
		pauseScale: 1.0,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Perform plays a discrete gesture step by step. Failed steps are
// logged and skipped, never retried; the only error is an unknown
// name. A caller gets nil even with no hardware attached.
func (p *Player) Perform(name Name) error {
	seq, err := Lookup(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	log.Debug("performing gesture", "name", name, "steps", len(seq))
	for _, step := range seq {
		if err := p.mover.Set(step.Servo, step.Angle); err != nil {
			log.Debug("gesture step failed", "name", name, "servo", step.Servo, "err", err)
		}
		if p.stepDelay > 0 {
			time.Sleep(p.stepDelay)
		}
	}
	return nil
}

// PerformMood plays a mood as composed smooth moves, ending at rest.
// Like Perform, individual failures degrade silently.
func (p *Player) PerformMood(name Name) error {
	mood, err := LookupMood(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	log.Debug("performing mood", "name", name, "segments", len(mood))
	for _, seg := range mood {
		if err := p.mover.SmoothMove(seg.Servo, seg.Angle, seg.Steps, p.moveDelay); err != nil {
			log.Debug("mood segment failed", "name", name, "servo", seg.Servo, "err", err)
		}
		if pause := p.scaled(seg.Pause); pause > 0 {
			time.Sleep(pause)
		}
	}
	return nil
}

// Rest smoothly returns every actuator to its neutral angle.
func (p *Player) Rest() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, seg := range restSegments() {
		if err := p.mover.SmoothMove(seg.Servo, seg.Angle, seg.Steps, p.moveDelay); err != nil {
			log.Debug("rest segment failed", "servo", seg.Servo, "err", err)
		}
	}
}

// React maps the conversation collaborator's directive to a gesture:
// "yes" nods, "no" shakes, anything else is a no-op.
func (p *Player) React(directive string) error {
	switch directive {
	case "yes":
		return p.Perform(Nod)
	case "no":
		return p.Perform(Shake)
	default:
		return nil
	}
}

func (p *Player) scaled(d time.Duration) time.Duration {
	if p.pauseScale == 1.0 {
		return d
	}
	return time.Duration(float64(d) * p.pauseScale)
}
