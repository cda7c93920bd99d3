package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRangeExhausted signals a clean end of the simulation range. It is
	// the expected end-of-run condition, not a failure.
	ErrRangeExhausted = errors.New("simulation range exhausted")

	ErrInsufficientCash    = errors.New("insufficient cash")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrMissingPrice        = errors.New("missing price")
	ErrNoSession           = errors.New("no trading session")
	ErrCalendarUnavailable = errors.New("calendar unavailable")
	ErrNegativeAmount      = errors.New("negative amount")
)

// CallbackError wraps an error raised inside a scheduled callback, carrying
// the failing action's name and the instant it fired at.
type CallbackError struct {
	Name string
	At   time.Time
	Err  error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %q failed at %s: %v", e.Name, e.At.Format(time.RFC3339), e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
