package core

import (
	"fmt"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// Resolution is the granularity at which the clock advances.
type Resolution int

const (
	Daily Resolution = iota
	Hourly
	Minute
	Second
)

// Step returns the tick duration for the resolution.
func (r Resolution) Step() time.Duration {
	switch r {
	case Daily:
		return 24 * time.Hour
	case Hourly:
		return time.Hour
	case Minute:
		return time.Minute
	case Second:
		return time.Second
	}
	return 0
}

func (r Resolution) String() string {
	switch r {
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	case Minute:
		return "minute"
	case Second:
		return "second"
	}
	return "unknown"
}

// ParseResolution accepts both resolution names ("daily") and timeframe
// shorthands ("1d", "1h", "1m", "1s").
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "daily":
		return Daily, nil
	case "hourly":
		return Hourly, nil
	case "minute":
		return Minute, nil
	case "second":
		return Second, nil
	}

	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid resolution %q: %w", s, err)
	}

	for _, r := range []Resolution{Daily, Hourly, Minute, Second} {
		if d == r.Step() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unsupported resolution %q", s)
}

// SimulationRange bounds one run. Immutable once a run starts.
type SimulationRange struct {
	Start      time.Time
	End        time.Time
	Resolution Resolution
}

func (r SimulationRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("simulation range requires start and end dates")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("simulation range start %s is after end %s",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	if r.Resolution.Step() == 0 {
		return fmt.Errorf("invalid resolution")
	}
	return nil
}

// Step returns the duration between consecutive ticks.
func (r SimulationRange) Step() time.Duration { return r.Resolution.Step() }

// Ticks returns the total number of instants in the range, inclusive of
// both bounds.
func (r SimulationRange) Ticks() int {
	return int(r.End.Sub(r.Start)/r.Step()) + 1
}

// ErrorPolicy controls how the run reacts to a failing scheduled callback.
type ErrorPolicy string

const (
	// ErrorPolicyFailFast terminates the run on the first callback error.
	ErrorPolicyFailFast ErrorPolicy = "fail-fast"
	// ErrorPolicyContinue logs the error and proceeds with the remaining
	// due callbacks.
	ErrorPolicyContinue ErrorPolicy = "continue-and-log"
)

// RunConfig holds the configuration of a single backtest run.
type RunConfig struct {
	Range        SimulationRange
	StartingCash float64
	// Margin permits the cash balance to go negative.
	Margin bool
	// AllowFlip permits a single adjustment to cross through zero quantity,
	// closing the position and reopening on the other side.
	AllowFlip   bool
	ErrorPolicy ErrorPolicy
}

func (c RunConfig) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.StartingCash < 0 {
		return fmt.Errorf("starting cash cannot be negative")
	}
	switch c.ErrorPolicy {
	case "", ErrorPolicyFailFast, ErrorPolicyContinue:
	default:
		return fmt.Errorf("unknown error policy %q", c.ErrorPolicy)
	}
	return nil
}

// Policy returns the configured error policy, defaulting to fail-fast.
func (c RunConfig) Policy() ErrorPolicy {
	if c.ErrorPolicy == "" {
		return ErrorPolicyFailFast
	}
	return c.ErrorPolicy
}
