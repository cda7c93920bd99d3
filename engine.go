// Package algotick is a clock-driven strategy scheduling and execution
// core for backtesting. One Engine owns one run: it funds the ledger,
// lets the strategy register its scheduled actions, then drives the clock
// tick by tick, firing due actions in deterministic order until the
// simulation range is exhausted.
package algotick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/quantforge/algotick/clock"
	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/ledger"
	"github.com/quantforge/algotick/schedule"
)

// Engine coordinates the clock, scheduler and ledger for a single run.
// Engines are single-use: a new run requires a new Engine, which keeps all
// run state instance-scoped and lets independent runs execute in parallel
// goroutines (eg. parameter sweeps).
type Engine struct {
	cfg      core.RunConfig
	strategy core.Strategy
	calendar core.Calendar
	feed     core.PriceFeed

	storage       core.RunStorage
	notifier      core.Notifier
	log           core.Logger
	showProgress  bool
	ledgerOptions []ledger.Option

	clock     *clock.Clock
	scheduler *schedule.Scheduler
	book      *ledger.Ledger

	state      core.LifecycleState
	runCtx     context.Context
	lastPrices map[string]float64
	equity     []core.EquityPoint
}

// Result is the outcome of one run.
type Result struct {
	State         core.LifecycleState
	FinalSnapshot core.LedgerSnapshot
	Equity        []core.EquityPoint
	Err           error
}

// New creates an engine for one backtest run.
func New(cfg core.RunConfig, strategy core.Strategy, calendar core.Calendar,
	feed core.PriceFeed, options ...Option) (*Engine, error) {

	if err := validate(cfg, strategy, calendar, feed); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		strategy:   strategy,
		calendar:   calendar,
		feed:       feed,
		log:        DefaultLog,
		state:      core.StateUninitialized,
		lastPrices: make(map[string]float64),
	}

	for _, option := range options {
		option(e)
	}

	clk, err := clock.New(cfg.Range)
	if err != nil {
		return nil, err
	}
	e.clock = clk
	e.scheduler = schedule.New(calendar, cfg.Range.Step(), cfg.Policy(), e.log)

	ledgerOptions := append([]ledger.Option{
		ledger.WithLogger(e.log),
		ledger.WithFillListener(e.onFill),
	}, e.ledgerOptions...)
	if cfg.Margin {
		ledgerOptions = append(ledgerOptions, ledger.WithMargin())
	}
	if cfg.AllowFlip {
		ledgerOptions = append(ledgerOptions, ledger.WithFlip())
	}
	e.book = ledger.New(cfg.StartingCash, ledgerOptions...)

	return e, nil
}

func validate(cfg core.RunConfig, strategy core.Strategy, calendar core.Calendar, feed core.PriceFeed) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strategy == nil {
		return fmt.Errorf("strategy cannot be nil")
	}
	if calendar == nil {
		return fmt.Errorf("calendar cannot be nil")
	}
	if feed == nil {
		return fmt.Errorf("price feed cannot be nil")
	}
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() core.LifecycleState { return e.state }

// Run executes the backtest to completion or failure. The host may cancel
// the context to request early termination; cancellation is honored
// between ticks, never mid-callback, and finalizes with whatever ledger
// state exists at that point.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state != core.StateUninitialized {
		return nil, fmt.Errorf("run already started (state %s); completed runs cannot be resumed", e.state)
	}
	e.runCtx = ctx

	e.state = core.StateInitializing
	e.log.Infof("initializing run: %s .. %s (%s)",
		e.cfg.Range.Start.Format("2006-01-02"), e.cfg.Range.End.Format("2006-01-02"), e.cfg.Range.Resolution)

	e.book.SetTime(e.cfg.Range.Start)
	if err := e.strategy.Initialize(ctx, e); err != nil {
		return e.fail(fmt.Errorf("strategy initialization failed: %w", err))
	}

	e.state = core.StateRunning
	e.log.Infof("starting backtest with %d scheduled actions", e.scheduler.Len())

	var bar *progressbar.ProgressBar
	if e.showProgress {
		bar = progressbar.Default(int64(e.cfg.Range.Ticks()))
	}

	cancelled := false
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		at, err := e.clock.Advance()
		if errors.Is(err, core.ErrRangeExhausted) {
			break
		}
		if err != nil {
			return e.fail(err)
		}

		e.book.SetTime(at)
		if err := e.scheduler.OnTick(ctx, at); err != nil {
			// Calendar failures are always fatal; callback failures reach
			// here only under fail-fast.
			return e.fail(err)
		}

		e.observeEquity(ctx, at)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	e.state = core.StateFinalizing
	if cancelled {
		e.log.Warn("run cancelled by host, finalizing early")
	}

	final := e.book.Snapshot(e.clock.Now())
	e.finalize(ctx, final)

	e.state = core.StateCompleted
	if e.notifier != nil {
		e.notifier.Notify(fmt.Sprintf("run completed: final cash %.2f, realized P&L %.2f",
			final.Cash, final.Realized))
	}
	e.log.Infof("run completed: cash=%.2f realized=%.2f positions=%d",
		final.Cash, final.Realized, len(final.Positions))

	return &Result{
		State:         e.state,
		FinalSnapshot: final,
		Equity:        e.equity,
	}, nil
}

// finalize invokes the strategy's end-of-run hook. The terminal path is
// already committed, so a panicking hook is logged and swallowed.
func (e *Engine) finalize(ctx context.Context, final core.LedgerSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("end-of-run callback panicked: %v", r)
		}
	}()
	e.strategy.OnEnd(ctx, final)
}

func (e *Engine) fail(err error) (*Result, error) {
	e.state = core.StateFailed
	e.log.WithError(err).Error("run failed")
	if e.notifier != nil {
		e.notifier.OnError(err)
	}
	return &Result{
		State:         e.state,
		FinalSnapshot: e.book.Snapshot(e.clock.Now()),
		Equity:        e.equity,
		Err:           err,
	}, err
}

// onFill is the ledger fill hook: it seeds the last-price table, persists
// the fill and notifies subscribers.
func (e *Engine) onFill(fill core.Fill) {
	e.lastPrices[fill.Symbol] = fill.Price

	if e.storage != nil {
		if err := e.storage.SaveFill(e.ctx(), &fill); err != nil {
			e.log.WithError(err).Error("failed to persist fill")
		}
	}
	if e.notifier != nil {
		e.notifier.OnFill(fill)
	}
}

// observeEquity refreshes last-known prices for held symbols and records
// one equity point for the tick. The valuation falls back to the last
// observed price when the feed has no fresher one (holidays, gaps).
func (e *Engine) observeEquity(ctx context.Context, at time.Time) {
	for _, pos := range e.book.Positions() {
		price, err := e.feed.PriceAt(ctx, pos.Symbol, at)
		if err == nil {
			e.lastPrices[pos.Symbol] = price
		}
	}

	value, err := e.book.Valuation(e.lastPrices)
	if err != nil {
		// A held symbol has never been priced; wait for a price.
		e.log.Tracef("skipping equity point at %s: %v", at, err)
		return
	}

	point := core.EquityPoint{At: at, Value: value}
	e.equity = append(e.equity, point)

	if e.storage != nil {
		if err := e.storage.SaveEquity(e.ctx(), &point); err != nil {
			e.log.WithError(err).Error("failed to persist equity point")
		}
	}
}

// ctx returns the run context, falling back to Background before Run.
func (e *Engine) ctx() context.Context {
	if e.runCtx != nil {
		return e.runCtx
	}
	return context.Background()
}
