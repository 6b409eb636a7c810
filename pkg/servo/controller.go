package servo

import (
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-rufus/internal/log"
)

// Sender is the link surface the controller needs. pkg/link.Link
// satisfies it; tests inject recorders.
type Sender interface {
	Send(channel, angle int) error
	Ready() bool
}

// Controller resolves actuator names, validates angles, and tracks the
// last commanded position of each servo. Motion is open-loop: no
// feedback is ever read, the commanded angle is assumed achieved.
type Controller struct {
	sender  Sender
	catalog map[Name]Actuator
	aliases map[Name]Name
	limits  Limits

	mu        sync.Mutex
	positions map[Name]int // last commanded angle, by canonical name
}

// Option configures a Controller.
type Option func(*Controller)

// WithCatalog replaces the default actuator catalog.
func WithCatalog(catalog map[Name]Actuator) Option {
	return func(c *Controller) { c.catalog = catalog }
}

// WithLimits replaces the default angle limits.
func WithLimits(limits Limits) Option {
	return func(c *Controller) { c.limits = limits }
}

// NewController creates a controller over the given link.
func NewController(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:    sender,
		catalog:   DefaultCatalog(),
		aliases:   DefaultAliases(),
		limits:    DefaultLimits,
		positions: make(map[Name]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve maps a name (or alias) to its actuator.
func (c *Controller) Resolve(name Name) (Actuator, error) {
	if canonical, ok := c.aliases[name]; ok {
		name = canonical
	}
	act, ok := c.catalog[name]
	if !ok {
		return Actuator{}, fmt.Errorf("%w: %s", ErrUnknownServo, name)
	}
	return act, nil
}

// Names returns all addressable names, canonical and alias.
func (c *Controller) Names() []Name {
	names := make([]Name, 0, len(c.catalog)+len(c.aliases))
	for name := range c.catalog {
		names = append(names, name)
	}
	for alias := range c.aliases {
		names = append(names, alias)
	}
	return names
}

// Set commands a single servo to an absolute angle. Unknown names and
// out-of-range angles are rejected before any I/O.
func (c *Controller) Set(name Name, angle int) error {
	act, err := c.Resolve(name)
	if err != nil {
		return err
	}
	if angle < c.limits.Min || angle > c.limits.Max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrAngleOutOfRange, angle, c.limits.Min, c.limits.Max)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sender.Send(act.Channel, angle); err != nil {
		return err
	}
	c.positions[act.Name] = angle
	return nil
}

// SmoothMove interpolates from the last commanded (or rest) angle to
// target over the given number of steps, pausing stepDelay between
// steps. If the link is not ready the move is a silent no-op: zero
// commands are issued and no error is surfaced, matching the system's
// tolerance for missing hardware.
func (c *Controller) SmoothMove(name Name, target, steps int, stepDelay time.Duration) error {
	act, err := c.Resolve(name)
	if err != nil {
		return err
	}
	if target < c.limits.Min || target > c.limits.Max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrAngleOutOfRange, target, c.limits.Min, c.limits.Max)
	}
	if steps <= 0 {
		steps = DefaultSmoothSteps
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sender.Ready() {
		return nil
	}

	start, ok := c.positions[act.Name]
	if !ok {
		start = act.Rest
	}
	increment := float64(target-start) / float64(steps)

	for i := 1; i <= steps; i++ {
		// Truncated toward zero per step, like the firmware expects.
		angle := int(float64(start) + increment*float64(i))
		if err := c.sender.Send(act.Channel, angle); err != nil {
			log.Debug("smooth move step failed", "servo", act.Name, "angle", angle, "err", err)
			continue
		}
		c.positions[act.Name] = angle
		if stepDelay > 0 {
			time.Sleep(stepDelay)
		}
	}
	return nil
}

// Position returns the last commanded angle for a servo, or its rest
// angle if never commanded. The bool reports whether the name resolved.
func (c *Controller) Position(name Name) (int, bool) {
	act, err := c.Resolve(name)
	if err != nil {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.positions[act.Name]; ok {
		return pos, true
	}
	return act.Rest, true
}

// Ready reports whether the underlying link accepts commands.
func (c *Controller) Ready() bool {
	return c.sender.Ready()
}
