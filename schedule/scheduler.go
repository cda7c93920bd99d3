// Package schedule holds scheduled action registrations and fires the ones
// due at each clock tick. Invocation is synchronous and sequential: a
// callback completes (or fails) before the next due callback starts, so
// ledger mutations never interleave.
package schedule

import (
	"context"
	"time"

	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/rule"
)

type registration struct {
	id   core.ScheduleID
	name string
	date core.DateRule
	tod  core.TimeRule
	fn   core.Callback
}

// Scheduler evaluates registrations against the rule evaluator on every
// tick. It is bound to a single run and a single goroutine.
type Scheduler struct {
	calendar core.Calendar
	step     time.Duration
	policy   core.ErrorPolicy
	log      core.Logger

	nextID        core.ScheduleID
	registrations []registration
}

// New creates a scheduler ticking at the given step.
func New(calendar core.Calendar, step time.Duration, policy core.ErrorPolicy, log core.Logger) *Scheduler {
	return &Scheduler{
		calendar: calendar,
		step:     step,
		policy:   policy,
		log:      log,
	}
}

// Register adds a scheduled action and returns its handle. Identity is the
// registration order: actions due at the same instant fire FIFO by
// registration. Duplicate registrations are permitted and fire
// independently.
func (s *Scheduler) Register(name string, date core.DateRule, tod core.TimeRule, fn core.Callback) core.ScheduleID {
	s.nextID++
	s.registrations = append(s.registrations, registration{
		id:   s.nextID,
		name: name,
		date: date,
		tod:  tod,
		fn:   fn,
	})
	s.log.WithField("action", name).Debugf("scheduled action registered (id=%d)", s.nextID)
	return s.nextID
}

// Unregister removes a registration from future ticks. A tick's match set
// is computed before any callback runs, so unregistering mid-tick does not
// retroactively affect the current tick.
func (s *Scheduler) Unregister(id core.ScheduleID) {
	for i, reg := range s.registrations {
		if reg.id == id {
			s.registrations = append(s.registrations[:i], s.registrations[i+1:]...)
			return
		}
	}
}

// Len returns the number of live registrations.
func (s *Scheduler) Len() int { return len(s.registrations) }

// OnTick fires every registration whose rules match the instant, in
// ascending registration order. Callback errors are wrapped in
// CallbackError; under fail-fast the first error aborts the tick, under
// continue-and-log errors are logged and the remaining due callbacks still
// run. Calendar failures always abort.
func (s *Scheduler) OnTick(ctx context.Context, at time.Time) error {
	// Freeze the match set before invoking anything.
	var due []registration
	for _, reg := range s.registrations {
		match, err := rule.Matches(at, s.step, reg.date, reg.tod, s.calendar)
		if err != nil {
			return err
		}
		if match {
			due = append(due, reg)
		}
	}

	for _, reg := range due {
		if err := s.invoke(ctx, reg, at); err != nil {
			if s.policy == core.ErrorPolicyContinue {
				s.log.WithError(err).Warnf("scheduled action %q failed, continuing", reg.name)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Scheduler) invoke(ctx context.Context, reg registration, at time.Time) error {
	s.log.WithField("action", reg.name).Tracef("firing at %s", at)
	if err := reg.fn(ctx, at); err != nil {
		return &core.CallbackError{Name: reg.name, At: at, Err: err}
	}
	return nil
}
