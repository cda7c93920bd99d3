package core

import "time"

// Position is one open holding. Quantity is signed: negative quantities are
// short positions. A quantity of zero is never stored, the position is
// removed instead.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// MarketValue returns the position value at the given price.
func (p Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

// Fill records one executed ledger adjustment.
type Fill struct {
	ID       int64     `json:"id" gorm:"primaryKey"`
	Symbol   string    `json:"symbol"`
	Quantity float64   `json:"quantity"` // signed delta
	Price    float64   `json:"price"`
	Realized float64   `json:"realized"` // P&L realized by this fill
	At       time.Time `json:"at"`
}

// LedgerSnapshot is an immutable copy of the ledger state at one instant.
type LedgerSnapshot struct {
	At        time.Time  `json:"at"`
	Cash      float64    `json:"cash"`
	Realized  float64    `json:"realized"`
	Positions []Position `json:"positions"`
}

// Position returns the snapshot's position for symbol, if any.
func (s LedgerSnapshot) Position(symbol string) (Position, bool) {
	for _, p := range s.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}

// Ledger is the authoritative record of cash and positions during a run.
// Mutations happen only through these operations, and only from scheduled
// callbacks, which execute strictly sequentially.
type Ledger interface {
	Deposit(amount float64) error
	// Withdraw fails with ErrInsufficientCash when amount exceeds the cash
	// balance and margin is disabled.
	Withdraw(amount float64) error
	// OpenOrAdjust applies a signed quantity delta at the given price,
	// recomputing the weighted average cost and realizing P&L on
	// reductions. A sign flip fails with ErrInvalidQuantity unless the
	// flip policy allows it.
	OpenOrAdjust(symbol string, delta, price float64) error
	// Close realizes the remaining P&L at price and removes the position.
	Close(symbol string, price float64) (realized float64, err error)
	// Valuation returns cash plus the sum of position market values. It
	// fails with ErrMissingPrice when a held symbol is absent from the
	// snapshot.
	Valuation(prices map[string]float64) (float64, error)

	Cash() float64
	RealizedPnL() float64
	Position(symbol string) (Position, bool)
	Positions() []Position
	Snapshot(at time.Time) LedgerSnapshot
}
