package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	cases := map[string]Resolution{
		"daily":  Daily,
		"hourly": Hourly,
		"minute": Minute,
		"second": Second,
		"1d":     Daily,
		"24h":    Daily,
		"1h":     Hourly,
		"1m":     Minute,
		"1s":     Second,
	}
	for in, want := range cases {
		got, err := ParseResolution(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseResolution("bogus")
	require.Error(t, err)
	_, err = ParseResolution("7m")
	require.Error(t, err, "durations off the resolution grid are rejected")
}

func TestResolution_RoundTrip(t *testing.T) {
	for _, r := range []Resolution{Daily, Hourly, Minute, Second} {
		parsed, err := ParseResolution(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}

func TestSimulationRange_Validate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, SimulationRange{Start: start, End: end, Resolution: Daily}.Validate())
	require.Error(t, SimulationRange{End: end, Resolution: Daily}.Validate())
	require.Error(t, SimulationRange{Start: end, End: start, Resolution: Daily}.Validate())
	require.Error(t, SimulationRange{Start: start, End: end, Resolution: Resolution(99)}.Validate())
}

func TestSimulationRange_Ticks(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	rng := SimulationRange{Start: start, End: start.AddDate(0, 0, 9), Resolution: Daily}
	assert.Equal(t, 10, rng.Ticks())

	single := SimulationRange{Start: start, End: start, Resolution: Daily}
	assert.Equal(t, 1, single.Ticks())
}

func TestRunConfig_Validate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := SimulationRange{Start: start, End: start.AddDate(0, 0, 9), Resolution: Daily}

	require.NoError(t, RunConfig{Range: rng, StartingCash: 1000}.Validate())
	require.Error(t, RunConfig{Range: rng, StartingCash: -1}.Validate())
	require.Error(t, RunConfig{Range: rng, ErrorPolicy: "whatever"}.Validate())
	require.NoError(t, RunConfig{Range: rng, ErrorPolicy: ErrorPolicyContinue}.Validate())
}

func TestRunConfig_PolicyDefaultsToFailFast(t *testing.T) {
	assert.Equal(t, ErrorPolicyFailFast, RunConfig{}.Policy())
	assert.Equal(t, ErrorPolicyContinue, RunConfig{ErrorPolicy: ErrorPolicyContinue}.Policy())
}

func TestCallbackError(t *testing.T) {
	inner := ErrMissingPrice
	at := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	err := &CallbackError{Name: "rebalance", At: at, Err: inner}

	assert.ErrorIs(t, err, ErrMissingPrice)
	assert.Contains(t, err.Error(), "rebalance")
	assert.Contains(t, err.Error(), "2020-01-06")
}

func TestPosition_MarketValue(t *testing.T) {
	long := Position{Symbol: "ACME", Quantity: 10, AvgCost: 100}
	assert.Equal(t, 1100.0, long.MarketValue(110))

	short := Position{Symbol: "ACME", Quantity: -10, AvgCost: 100}
	assert.Equal(t, -1100.0, short.MarketValue(110))
}

func TestLedgerSnapshot_Position(t *testing.T) {
	snap := LedgerSnapshot{Positions: []Position{
		{Symbol: "ACME", Quantity: 10},
		{Symbol: "GLOBEX", Quantity: 5},
	}}

	pos, ok := snap.Position("GLOBEX")
	require.True(t, ok)
	assert.Equal(t, 5.0, pos.Quantity)

	_, ok = snap.Position("INITECH")
	assert.False(t, ok)
}
