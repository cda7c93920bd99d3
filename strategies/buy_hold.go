// Package strategies contains ready-made strategy definitions and the
// registry the CLI resolves strategy names against.
package strategies

import (
	"context"
	"errors"
	"time"

	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/rule"
)

// BuyHold buys a fixed quantity of one symbol at the first session open in
// the range and holds it until the end of the run.
type BuyHold struct {
	Symbol   string
	Quantity float64

	bought bool
}

func NewBuyHold(symbol string, quantity float64) *BuyHold {
	return &BuyHold{Symbol: symbol, Quantity: quantity}
}

func (s *BuyHold) Initialize(_ context.Context, env core.Environment) error {
	env.Schedule("buy-and-hold", rule.EveryWeekday(), rule.AtOpen(), func(ctx context.Context, at time.Time) error {
		if s.bought {
			return nil
		}

		price, err := env.Prices().PriceAt(ctx, s.Symbol, at)
		if errors.Is(err, core.ErrMissingPrice) {
			// No data yet for this date, try the next session.
			return nil
		}
		if err != nil {
			return err
		}

		if err := env.Ledger().OpenOrAdjust(s.Symbol, s.Quantity, price); err != nil {
			return err
		}
		s.bought = true
		env.Log().Infof("bought %.4f %s @ %.4f", s.Quantity, s.Symbol, price)
		return nil
	})
	return nil
}

func (s *BuyHold) OnEnd(_ context.Context, _ core.LedgerSnapshot) {}
