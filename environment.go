package algotick

import (
	"github.com/quantforge/algotick/core"
)

// The Engine doubles as the strategy-facing environment: everything a
// strategy may touch during Initialize and from scheduled callbacks is
// reachable through these accessors.
var _ core.Environment = (*Engine)(nil)

// Schedule registers a scheduled action with the run's scheduler.
func (e *Engine) Schedule(name string, date core.DateRule, tod core.TimeRule, fn core.Callback) core.ScheduleID {
	return e.scheduler.Register(name, date, tod, fn)
}

// Unschedule removes a registration from future ticks.
func (e *Engine) Unschedule(id core.ScheduleID) {
	e.scheduler.Unregister(id)
}

// Ledger returns the run's portfolio ledger.
func (e *Engine) Ledger() core.Ledger { return e.book }

// Prices returns the run's price feed.
func (e *Engine) Prices() core.PriceFeed { return e.feed }

// Calendar returns the run's market-hours collaborator.
func (e *Engine) Calendar() core.Calendar { return e.calendar }

// Config returns the run configuration.
func (e *Engine) Config() core.RunConfig { return e.cfg }

// Log returns the run logger.
func (e *Engine) Log() core.Logger { return e.log }
