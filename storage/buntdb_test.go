package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantforge/algotick/core"
)

func seedFills(t *testing.T, store core.RunStorage) {
	t.Helper()
	base := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)

	fills := []*core.Fill{
		{Symbol: "ACME", Quantity: 10, Price: 100, At: base},
		{Symbol: "GLOBEX", Quantity: 5, Price: 200, At: base.AddDate(0, 0, 1)},
		{Symbol: "ACME", Quantity: -4, Price: 110, Realized: 40, At: base.AddDate(0, 0, 2)},
	}
	for _, fill := range fills {
		require.NoError(t, store.SaveFill(context.Background(), fill))
	}
}

func TestBuntStorage_SaveAndQueryFills(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	seedFills(t, store)

	fills, err := store.Fills(context.Background())
	require.NoError(t, err)
	require.Len(t, fills, 3)

	// Time-ordered and sequentially identified.
	assert.Equal(t, int64(1), fills[0].ID)
	assert.True(t, fills[0].At.Before(fills[1].At))
	assert.True(t, fills[1].At.Before(fills[2].At))
}

func TestBuntStorage_FillFilters(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	seedFills(t, store)

	ctx := context.Background()

	acme, err := store.Fills(ctx, core.WithSymbol("ACME"))
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	buys, err := store.Fills(ctx, core.WithBuys())
	require.NoError(t, err)
	assert.Len(t, buys, 2)

	sells, err := store.Fills(ctx, core.WithSells())
	require.NoError(t, err)
	require.Len(t, sells, 1)
	assert.Equal(t, 40.0, sells[0].Realized)

	cutoff := time.Date(2020, 1, 7, 0, 0, 0, 0, time.UTC)
	early, err := store.Fills(ctx, core.WithAtBeforeOrEqual(cutoff))
	require.NoError(t, err)
	assert.Len(t, early, 2)

	// Filters compose conjunctively.
	both, err := store.Fills(ctx, core.WithSymbol("ACME"), core.WithBuys())
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestBuntStorage_EquityCurve(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)

	base := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	for i, value := range []float64{100000, 100500, 99800} {
		point := &core.EquityPoint{At: base.AddDate(0, 0, i), Value: value}
		require.NoError(t, store.SaveEquity(context.Background(), point))
	}

	points, err := store.Equity(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 100000.0, points[0].Value)
	assert.Equal(t, 99800.0, points[2].Value)
}

func TestBuntStorage_EmptyQueries(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)

	fills, err := store.Fills(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fills)

	points, err := store.Equity(context.Background())
	require.NoError(t, err)
	assert.Empty(t, points)
}
