package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestReturns(t *testing.T) {
	assert.Nil(t, Returns([]float64{100}))

	returns := Returns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	// A zero equity point yields a zero return instead of dividing by it.
	returns = Returns([]float64{0, 100})
	require.Len(t, returns, 1)
	assert.Equal(t, 0.0, returns[0])
}

func TestPayoff(t *testing.T) {
	assert.InDelta(t, 2.0, Payoff([]float64{10, 10, -5, -5}), 1e-9)
	assert.Equal(t, 10.0, Payoff([]float64{1, 2, 3}), "no losses falls back to the default")
}

func TestProfitFactor(t *testing.T) {
	assert.InDelta(t, 4.0, ProfitFactor([]float64{10, 10, -5}), 1e-9)
	assert.Equal(t, 10.0, ProfitFactor([]float64{1, 2}))
}

func TestSQN(t *testing.T) {
	assert.Equal(t, 0.0, SQN(nil))
	assert.Equal(t, 0.0, SQN([]float64{5, 5, 5}), "zero variance yields zero")

	// sqrt(4) * mean(0.5) / stddev
	values := []float64{1, 0, 1, 0}
	sqn := SQN(values)
	assert.Greater(t, sqn, 0.0)
	assert.InDelta(t, 2*0.5/StdDev(values), sqn, 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100}))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}), "monotonic rise has no drawdown")

	// Peak 120, trough 90: 25% drawdown.
	dd := MaxDrawdown([]float64{100, 120, 95, 90, 110})
	assert.InDelta(t, 0.25, dd, 1e-9)
}

func TestBootstrap(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i % 10)
	}

	interval := Bootstrap(values, Mean, 100, 0.95)
	assert.LessOrEqual(t, interval.Lower, interval.Upper)
	assert.InDelta(t, 4.5, interval.Lower, 1.5)
	assert.InDelta(t, 4.5, interval.Upper, 1.5)
}
