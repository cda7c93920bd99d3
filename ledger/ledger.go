// Package ledger implements the portfolio ledger: cash, open positions and
// realized P&L for one run. The run model is single-threaded (callbacks
// execute strictly sequentially), so the ledger carries no locks; each run
// owns its own instance.
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/quantforge/algotick/core"
)

// Ledger implements core.Ledger.
type Ledger struct {
	cash      float64
	positions map[string]*core.Position
	realized  float64

	margin    bool
	allowFlip bool

	log     core.Logger
	onFill  func(core.Fill)
	fillSeq int64
	now     time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMargin permits the cash balance to go negative.
func WithMargin() Option {
	return func(l *Ledger) { l.margin = true }
}

// WithFlip permits a single adjustment to cross through zero quantity.
func WithFlip() Option {
	return func(l *Ledger) { l.allowFlip = true }
}

// WithLogger sets the ledger logger.
func WithLogger(log core.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithFillListener registers a hook invoked after every executed
// adjustment. The engine uses it to persist fills and track last prices.
func WithFillListener(fn func(core.Fill)) Option {
	return func(l *Ledger) { l.onFill = fn }
}

// New creates a ledger funded with startingCash.
func New(startingCash float64, options ...Option) *Ledger {
	l := &Ledger{
		cash:      startingCash,
		positions: make(map[string]*core.Position),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// SetTime updates the instant stamped on subsequent fills and snapshots.
// The engine calls it once per tick.
func (l *Ledger) SetTime(at time.Time) { l.now = at }

// Deposit adds cash to the ledger.
func (l *Ledger) Deposit(amount float64) error {
	if amount < 0 {
		return core.ErrNegativeAmount
	}
	l.cash += amount
	return nil
}

// Withdraw removes cash from the ledger. Without margin the balance cannot
// go negative.
func (l *Ledger) Withdraw(amount float64) error {
	if amount < 0 {
		return core.ErrNegativeAmount
	}
	if !l.margin && amount > l.cash {
		return core.ErrInsufficientCash
	}
	l.cash -= amount
	return nil
}

// OpenOrAdjust applies a signed quantity delta at the given price.
func (l *Ledger) OpenOrAdjust(symbol string, delta, price float64) error {
	if delta == 0 || price <= 0 {
		return core.ErrInvalidQuantity
	}

	pos, held := l.positions[symbol]
	var current core.Position
	if held {
		current = *pos
	}
	newQty := current.Quantity + delta

	flip := held && newQty != 0 && !sameSign(current.Quantity, newQty)
	if flip && !l.allowFlip {
		return core.ErrInvalidQuantity
	}

	cost := delta * price
	if !l.margin && cost > l.cash {
		return core.ErrInsufficientCash
	}

	var realized float64
	switch {
	case !held || sameSign(current.Quantity, delta):
		// Opening or increasing: weighted average cost.
		total := math.Abs(current.Quantity)*current.AvgCost + math.Abs(delta)*price
		l.positions[symbol] = &core.Position{
			Symbol:   symbol,
			Quantity: newQty,
			AvgCost:  total / math.Abs(newQty),
		}
	case flip:
		// Close the whole position, reopen the remainder on the other side.
		realized = current.Quantity * (price - current.AvgCost)
		l.positions[symbol] = &core.Position{
			Symbol:   symbol,
			Quantity: newQty,
			AvgCost:  price,
		}
	default:
		// Reduction, possibly to zero.
		closed := math.Min(math.Abs(delta), math.Abs(current.Quantity))
		realized = closed * (price - current.AvgCost) * sign(current.Quantity)
		if newQty == 0 {
			delete(l.positions, symbol)
		} else {
			l.positions[symbol] = &core.Position{
				Symbol:   symbol,
				Quantity: newQty,
				AvgCost:  current.AvgCost,
			}
		}
	}

	l.cash -= cost
	l.realized += realized
	l.emitFill(symbol, delta, price, realized)

	if l.log != nil {
		l.log.WithFields(map[string]any{
			"symbol": symbol,
			"delta":  delta,
			"price":  price,
		}).Debugf("position adjusted, cash=%.2f", l.cash)
	}
	return nil
}

// Close realizes the remaining P&L of a position at price and removes it.
func (l *Ledger) Close(symbol string, price float64) (float64, error) {
	pos, held := l.positions[symbol]
	if !held {
		return 0, core.ErrInvalidQuantity
	}
	if price <= 0 {
		return 0, core.ErrInvalidQuantity
	}

	realized := pos.Quantity * (price - pos.AvgCost)
	l.cash += pos.Quantity * price
	l.realized += realized
	quantity := pos.Quantity
	delete(l.positions, symbol)
	l.emitFill(symbol, -quantity, price, realized)

	if l.log != nil {
		l.log.Infof("closed %s: %.4f @ %.4f, realized %.4f", symbol, quantity, price, realized)
	}
	return realized, nil
}

// Valuation returns cash plus the market value of all open positions.
func (l *Ledger) Valuation(prices map[string]float64) (float64, error) {
	total := l.cash
	for symbol, pos := range l.positions {
		price, ok := prices[symbol]
		if !ok {
			return 0, core.ErrMissingPrice
		}
		total += pos.MarketValue(price)
	}
	return total, nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// RealizedPnL returns the accumulated realized profit and loss.
func (l *Ledger) RealizedPnL() float64 { return l.realized }

// Position returns the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (core.Position, bool) {
	pos, held := l.positions[symbol]
	if !held {
		return core.Position{}, false
	}
	return *pos, true
}

// Positions returns all open positions, sorted by symbol.
func (l *Ledger) Positions() []core.Position {
	out := make([]core.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Snapshot deep-copies the ledger state at the given instant.
func (l *Ledger) Snapshot(at time.Time) core.LedgerSnapshot {
	return core.LedgerSnapshot{
		At:        at,
		Cash:      l.cash,
		Realized:  l.realized,
		Positions: l.Positions(),
	}
}

func (l *Ledger) emitFill(symbol string, delta, price, realized float64) {
	if l.onFill == nil {
		return
	}
	l.fillSeq++
	l.onFill(core.Fill{
		ID:       l.fillSeq,
		Symbol:   symbol,
		Quantity: delta,
		Price:    price,
		Realized: realized,
		At:       l.now,
	})
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
