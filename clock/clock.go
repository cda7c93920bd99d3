// Package clock owns the simulation time cursor. The clock ticks through a
// bounded range at a fixed resolution without gaps; skipping non-trading
// days is the calendar collaborator's concern, not the clock's.
package clock

import (
	"time"

	"github.com/quantforge/algotick/core"
)

// Clock advances monotonically through a SimulationRange. It is bound to a
// single run and is not safe for concurrent use.
type Clock struct {
	rng     core.SimulationRange
	current time.Time
	started bool
}

// New creates a clock for the given range.
func New(rng core.SimulationRange) (*Clock, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return &Clock{rng: rng}, nil
}

// Advance returns the next instant at the configured resolution. The first
// call yields the range start. Once the cursor would pass the range end,
// every call returns ErrRangeExhausted and callers must stop advancing.
func (c *Clock) Advance() (time.Time, error) {
	if !c.started {
		c.started = true
		c.current = c.rng.Start
		return c.current, nil
	}

	next := c.current.Add(c.rng.Step())
	if next.After(c.rng.End) {
		return time.Time{}, core.ErrRangeExhausted
	}
	c.current = next
	return c.current, nil
}

// Now returns the current instant. Zero before the first Advance.
func (c *Clock) Now() time.Time { return c.current }

// Step returns the duration between consecutive ticks.
func (c *Clock) Step() time.Duration { return c.rng.Step() }

// Range returns the bounded range the clock was created with.
func (c *Clock) Range() core.SimulationRange { return c.rng }
