package core

import (
	"context"
	"time"
)

// ScheduleID identifies a registered scheduled action. IDs are assigned in
// registration order and double as the FIFO tie-break when several actions
// fire at the same instant.
type ScheduleID int64

// Callback is a scheduled action body. It receives the instant the action
// fired at and may read or mutate the run's ledger.
type Callback func(ctx context.Context, at time.Time) error

// Strategy is the user-supplied strategy definition. Initialize is called
// once at run start, during which the strategy registers its scheduled
// actions and may fund the ledger. OnEnd receives the final ledger snapshot
// after the simulation range is exhausted.
type Strategy interface {
	Initialize(ctx context.Context, env Environment) error
	OnEnd(ctx context.Context, final LedgerSnapshot)
}

// Environment is the capability set handed to a strategy during a run.
// All methods are bound to a single run instance; nothing is shared between
// parallel runs.
type Environment interface {
	// Schedule registers an action that fires whenever both rules match the
	// current tick. Actions fire in registration order.
	Schedule(name string, date DateRule, tod TimeRule, fn Callback) ScheduleID
	// Unschedule removes a registration from future ticks. The current
	// tick's already-computed match set is not affected.
	Unschedule(id ScheduleID)

	Ledger() Ledger
	Prices() PriceFeed
	Calendar() Calendar
	Config() RunConfig
	Log() Logger
}

// Session holds the open and close instants of one trading day.
type Session struct {
	Open  time.Time
	Close time.Time
}

// Calendar supplies market-hours data for rule evaluation.
type Calendar interface {
	// Session returns the trading session for the given date, or
	// ErrNoSession when the market is closed that day.
	Session(date time.Time) (Session, error)
	IsTradingDay(date time.Time) (bool, error)
}

// DateRule decides whether a calendar date is eligible for a scheduled
// action. Implementations are stateless and re-evaluable.
type DateRule interface {
	Matches(date time.Time, cal Calendar) (bool, error)
}

// TimeRule resolves the intraday instant an action should fire at, relative
// to the session anchors. The boolean is false when the rule cannot resolve
// for the given session.
type TimeRule interface {
	Resolve(session Session) (time.Time, bool)
}

// PriceFeed supplies prices for valuation and strategy decisions.
type PriceFeed interface {
	// PriceAt returns the price of symbol effective at the given instant,
	// or ErrMissingPrice when no price is known.
	PriceAt(ctx context.Context, symbol string, at time.Time) (float64, error)
}

// Notifier receives run events (fills, completion, failures).
type Notifier interface {
	Notify(message string)
	OnFill(fill Fill)
	OnError(err error)
}

// NotifierWithStart is a notifier with its own polling loop, eg. Telegram.
type NotifierWithStart interface {
	Notifier
	Start()
}
