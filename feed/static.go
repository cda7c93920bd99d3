package feed

import (
	"context"
	"sort"
	"time"

	"github.com/quantforge/algotick/core"
)

// Static is an in-memory price feed, used by tests and small simulations.
type Static struct {
	points map[string][]PricePoint
}

// NewStatic creates an empty static feed.
func NewStatic() *Static {
	return &Static{points: make(map[string][]PricePoint)}
}

// Set registers a constant price for symbol, effective from the beginning
// of time.
func (f *Static) Set(symbol string, price float64) *Static {
	return f.SetAt(symbol, time.Time{}, price)
}

// SetAt registers a price effective from `from` onwards, until a later
// entry overrides it.
func (f *Static) SetAt(symbol string, from time.Time, price float64) *Static {
	points := append(f.points[symbol], PricePoint{Time: from, Value: price})
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	f.points[symbol] = points
	return f
}

// PriceAt implements core.PriceFeed.
func (f *Static) PriceAt(_ context.Context, symbol string, at time.Time) (float64, error) {
	points, ok := f.points[symbol]
	if !ok || len(points) == 0 {
		return 0, core.ErrMissingPrice
	}

	i := sort.Search(len(points), func(i int) bool {
		return points[i].Time.After(at)
	})
	if i == 0 {
		return 0, core.ErrMissingPrice
	}
	return points[i-1].Value, nil
}
