package core

import (
	"context"
	"time"
)

// EquityPoint is the total portfolio value observed at one tick.
type EquityPoint struct {
	ID    int64     `json:"id" gorm:"primaryKey"`
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// FillFilter selects fills in storage queries.
type FillFilter func(Fill) bool

// RunStorage persists the artifacts of a run: executed fills and the
// per-tick equity curve.
type RunStorage interface {
	SaveFill(ctx context.Context, fill *Fill) error
	Fills(ctx context.Context, filters ...FillFilter) ([]*Fill, error)
	SaveEquity(ctx context.Context, point *EquityPoint) error
	Equity(ctx context.Context) ([]*EquityPoint, error)
}

func WithSymbol(symbol string) FillFilter {
	return func(fill Fill) bool {
		return fill.Symbol == symbol
	}
}

// WithBuys selects fills that increased the position.
func WithBuys() FillFilter {
	return func(fill Fill) bool {
		return fill.Quantity > 0
	}
}

// WithSells selects fills that reduced the position.
func WithSells() FillFilter {
	return func(fill Fill) bool {
		return fill.Quantity < 0
	}
}

func WithAtBeforeOrEqual(t time.Time) FillFilter {
	return func(fill Fill) bool {
		return !fill.At.After(t)
	}
}
