package feed

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"

	"github.com/quantforge/algotick/core"
)

// Retry wraps an I/O-bound price feed and retries transient failures with
// exponential backoff. ErrMissingPrice is a domain answer, not a failure,
// and is never retried.
type Retry struct {
	inner    core.PriceFeed
	attempts int
	backoff  *backoff.Backoff
}

// NewRetry creates a retrying wrapper performing at most attempts tries.
func NewRetry(inner core.PriceFeed, attempts int) *Retry {
	return &Retry{
		inner:    inner,
		attempts: attempts,
		backoff: &backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    5 * time.Second,
			Factor: 2,
		},
	}
}

// PriceAt implements core.PriceFeed.
func (f *Retry) PriceAt(ctx context.Context, symbol string, at time.Time) (float64, error) {
	f.backoff.Reset()

	var err error
	for i := 0; i < f.attempts; i++ {
		var price float64
		price, err = f.inner.PriceAt(ctx, symbol, at)
		if err == nil || errors.Is(err, core.ErrMissingPrice) {
			return price, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(f.backoff.Duration()):
		}
	}
	return 0, err
}
