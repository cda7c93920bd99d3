package calendar

import (
	"time"

	"github.com/quantforge/algotick/core"
)

// Static serves a fixed set of sessions, keyed by date. Dates without an
// entry are non-trading days. Useful in tests and for markets whose hours
// come from an external data file.
type Static struct {
	sessions map[string]core.Session
	// Err, when set, is returned by every query. Simulates an unavailable
	// calendar collaborator.
	Err error
}

// NewStatic creates an empty static calendar.
func NewStatic() *Static {
	return &Static{sessions: make(map[string]core.Session)}
}

// AddSession registers a trading session for the session's date.
func (c *Static) AddSession(session core.Session) *Static {
	c.sessions[session.Open.Format(dateLayout)] = session
	return c
}

func (c *Static) IsTradingDay(date time.Time) (bool, error) {
	if c.Err != nil {
		return false, c.Err
	}
	_, ok := c.sessions[date.Format(dateLayout)]
	return ok, nil
}

func (c *Static) Session(date time.Time) (core.Session, error) {
	if c.Err != nil {
		return core.Session{}, c.Err
	}
	session, ok := c.sessions[date.Format(dateLayout)]
	if !ok {
		return core.Session{}, core.ErrNoSession
	}
	return session, nil
}
