// Package calendar provides market-hours collaborators for rule
// evaluation. The core only depends on the core.Calendar contract; these
// are the stock implementations.
package calendar

import (
	"fmt"
	"time"

	"github.com/StudioSol/set"

	"github.com/quantforge/algotick/core"
)

const dateLayout = "2006-01-02"

// Weekday is a Monday-to-Friday calendar with fixed session hours and an
// explicit holiday set.
type Weekday struct {
	openHour, openMin   int
	closeHour, closeMin int
	loc                 *time.Location
	holidays            *set.LinkedHashSetString
}

// Option configures a Weekday calendar.
type Option func(*Weekday)

// WithHolidays marks dates as non-trading days.
func WithHolidays(dates ...time.Time) Option {
	return func(c *Weekday) {
		for _, d := range dates {
			c.holidays.Add(d.Format(dateLayout))
		}
	}
}

// WithLocation sets the session time zone. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *Weekday) { c.loc = loc }
}

// NewWeekday creates a calendar with sessions from open to close, given as
// "15:04" wall-clock times.
func NewWeekday(open, close string, options ...Option) (*Weekday, error) {
	openT, err := time.Parse("15:04", open)
	if err != nil {
		return nil, fmt.Errorf("invalid open time %q: %w", open, err)
	}
	closeT, err := time.Parse("15:04", close)
	if err != nil {
		return nil, fmt.Errorf("invalid close time %q: %w", close, err)
	}
	if !openT.Before(closeT) {
		return nil, fmt.Errorf("session open %q must precede close %q", open, close)
	}

	c := &Weekday{
		openHour:  openT.Hour(),
		openMin:   openT.Minute(),
		closeHour: closeT.Hour(),
		closeMin:  closeT.Minute(),
		loc:       time.UTC,
		holidays:  set.NewLinkedHashSetString(),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// IsTradingDay reports whether the market trades on the given date.
func (c *Weekday) IsTradingDay(date time.Time) (bool, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}
	return !c.holidays.InArray(date.Format(dateLayout)), nil
}

// Session returns the trading session for the given date, or ErrNoSession
// on weekends and holidays.
func (c *Weekday) Session(date time.Time) (core.Session, error) {
	trading, err := c.IsTradingDay(date)
	if err != nil {
		return core.Session{}, err
	}
	if !trading {
		return core.Session{}, core.ErrNoSession
	}

	return core.Session{
		Open:  time.Date(date.Year(), date.Month(), date.Day(), c.openHour, c.openMin, 0, 0, c.loc),
		Close: time.Date(date.Year(), date.Month(), date.Day(), c.closeHour, c.closeMin, 0, 0, c.loc),
	}, nil
}
