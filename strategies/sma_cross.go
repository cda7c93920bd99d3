package strategies

import (
	"context"
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/rule"
)

// historyProvider is the optional feed capability SMACross needs to build
// its indicator window. The CSV feed implements it.
type historyProvider interface {
	History(symbol string, until time.Time, n int) []float64
}

// SMACross trades a fast/slow simple moving average crossover, rebalancing
// a few minutes after each session open: long when the fast average is
// above the slow one, flat otherwise.
type SMACross struct {
	Symbol     string
	FastPeriod int
	SlowPeriod int
	Quantity   float64
}

func NewSMACross(symbol string, fast, slow int, quantity float64) *SMACross {
	return &SMACross{
		Symbol:     symbol,
		FastPeriod: fast,
		SlowPeriod: slow,
		Quantity:   quantity,
	}
}

func (s *SMACross) Initialize(_ context.Context, env core.Environment) error {
	history, ok := env.Prices().(historyProvider)
	if !ok {
		return fmt.Errorf("sma-cross requires a price feed with history support")
	}
	if s.FastPeriod >= s.SlowPeriod {
		return fmt.Errorf("fast period %d must be below slow period %d", s.FastPeriod, s.SlowPeriod)
	}

	env.Schedule("sma-cross-rebalance", rule.EveryWeekday(), rule.AfterOpen(10*time.Minute),
		func(ctx context.Context, at time.Time) error {
			return s.rebalance(ctx, env, history, at)
		})
	return nil
}

func (s *SMACross) rebalance(_ context.Context, env core.Environment, history historyProvider, at time.Time) error {
	closes := history.History(s.Symbol, at, s.SlowPeriod+1)
	if len(closes) <= s.SlowPeriod {
		// Still warming up.
		return nil
	}

	fast := talib.Sma(closes, s.FastPeriod)
	slow := talib.Sma(closes, s.SlowPeriod)
	last := len(closes) - 1
	price := closes[last]

	book := env.Ledger()
	_, invested := book.Position(s.Symbol)

	switch {
	case !invested && fast[last] > slow[last]:
		if err := book.OpenOrAdjust(s.Symbol, s.Quantity, price); err != nil {
			return err
		}
		env.Log().Infof("golden cross: long %.4f %s @ %.4f", s.Quantity, s.Symbol, price)
	case invested && fast[last] < slow[last]:
		realized, err := book.Close(s.Symbol, price)
		if err != nil {
			return err
		}
		env.Log().Infof("death cross: flat %s @ %.4f, realized %.2f", s.Symbol, price, realized)
	}
	return nil
}

func (s *SMACross) OnEnd(_ context.Context, _ core.LedgerSnapshot) {}
