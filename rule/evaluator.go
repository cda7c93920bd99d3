package rule

import (
	"errors"
	"time"

	"github.com/quantforge/algotick/core"
)

// Matches reports whether a scheduled action with the given rules fires at
// instant `at`. A tick covers the half-open interval [at, at+step): the
// action fires on the tick whose interval contains the time rule's resolved
// instant, which makes coarse resolutions (eg. daily ticks with an "at
// open" rule) well defined.
//
// Holidays are not errors: when the calendar reports no session for the
// date, no time rule can resolve and the action does not fire. A failing
// calendar collaborator surfaces as ErrCalendarUnavailable.
func Matches(at time.Time, step time.Duration, date core.DateRule, tod core.TimeRule, cal core.Calendar) (bool, error) {
	day := DateOf(at)

	ok, err := date.Matches(day, cal)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	trading, err := cal.IsTradingDay(day)
	if err != nil {
		return false, err
	}
	if !trading {
		return false, nil
	}

	session, err := cal.Session(day)
	if errors.Is(err, core.ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	target, ok := tod.Resolve(session)
	if !ok {
		return false, nil
	}

	return !target.Before(at) && target.Before(at.Add(step)), nil
}
