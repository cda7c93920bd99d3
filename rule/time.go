package rule

import (
	"time"

	"github.com/quantforge/algotick/core"
)

type afterOpen struct {
	offset time.Duration
}

// AtOpen fires at the session open.
func AtOpen() core.TimeRule { return afterOpen{} }

// AfterOpen fires the given duration after the session open.
func AfterOpen(offset time.Duration) core.TimeRule {
	return afterOpen{offset: offset}
}

func (r afterOpen) Resolve(session core.Session) (time.Time, bool) {
	if session.Open.IsZero() {
		return time.Time{}, false
	}
	return session.Open.Add(r.offset), true
}

type beforeClose struct {
	offset time.Duration
}

// AtClose fires at the session close.
func AtClose() core.TimeRule { return beforeClose{} }

// BeforeClose fires the given duration before the session close.
func BeforeClose(offset time.Duration) core.TimeRule {
	return beforeClose{offset: offset}
}

func (r beforeClose) Resolve(session core.Session) (time.Time, bool) {
	if session.Close.IsZero() {
		return time.Time{}, false
	}
	return session.Close.Add(-r.offset), true
}

type atTime struct {
	hour, minute int
}

// At fires at a fixed wall-clock time on the session's date.
func At(hour, minute int) core.TimeRule {
	return atTime{hour: hour, minute: minute}
}

func (r atTime) Resolve(session core.Session) (time.Time, bool) {
	if session.Open.IsZero() {
		return time.Time{}, false
	}
	open := session.Open
	return time.Date(open.Year(), open.Month(), open.Day(),
		r.hour, r.minute, 0, 0, open.Location()), true
}
