package algotick

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantforge/algotick/calendar"
	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/feed"
	zlog "github.com/quantforge/algotick/logger/zerolog"
	"github.com/quantforge/algotick/rule"
	"github.com/quantforge/algotick/storage"
)

// scriptedStrategy wires test behavior into the strategy hooks.
type scriptedStrategy struct {
	initialize func(ctx context.Context, env core.Environment) error
	onEnd      func(snapshot core.LedgerSnapshot)
}

func (s *scriptedStrategy) Initialize(ctx context.Context, env core.Environment) error {
	if s.initialize != nil {
		return s.initialize(ctx, env)
	}
	return nil
}

func (s *scriptedStrategy) OnEnd(_ context.Context, snapshot core.LedgerSnapshot) {
	if s.onEnd != nil {
		s.onEnd(snapshot)
	}
}

func quietLogger() core.Logger {
	nop := zerolog.Nop()
	return zlog.NewAdapter(&nop)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func testConfig() core.RunConfig {
	return core.RunConfig{
		Range: core.SimulationRange{
			Start:      date("2020-01-01"),
			End:        date("2020-01-10"),
			Resolution: core.Daily,
		},
		StartingCash: 100000,
	}
}

func testCalendar(t *testing.T) core.Calendar {
	t.Helper()
	// New Year's Day is a holiday, so the first trading day of the range
	// is Thursday the 2nd.
	cal, err := calendar.NewWeekday("09:30", "16:00", calendar.WithHolidays(date("2020-01-01")))
	require.NoError(t, err)
	return cal
}

func testFeed() *feed.Static {
	return feed.NewStatic().
		Set("ACME", 100).
		SetAt("ACME", date("2020-01-10"), 105)
}

func buyOnce(symbol string, quantity float64) *scriptedStrategy {
	bought := false
	return &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			env.Schedule("buy-once", rule.EveryWeekday(), rule.AtOpen(),
				func(ctx context.Context, at time.Time) error {
					if bought {
						return nil
					}
					price, err := env.Prices().PriceAt(ctx, symbol, at)
					if err != nil {
						return err
					}
					if err := env.Ledger().OpenOrAdjust(symbol, quantity, price); err != nil {
						return err
					}
					bought = true
					return nil
				})
			return nil
		},
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)

	engine, err := New(testConfig(), buyOnce("ACME", 10), testCalendar(t), testFeed(),
		WithLogger(quietLogger()), WithStorage(store))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, core.StateCompleted, result.State)
	assert.Equal(t, core.StateCompleted, engine.State())

	// 10 shares bought at 100 on the first trading day.
	assert.InDelta(t, 99000.0, result.FinalSnapshot.Cash, 1e-9)
	pos, held := result.FinalSnapshot.Position("ACME")
	require.True(t, held)
	assert.Equal(t, 10.0, pos.Quantity)

	// One equity point per tick; the last one marks at the final price.
	require.Len(t, result.Equity, 10)
	assert.InDelta(t, 100000.0, result.Equity[0].Value, 1e-9)
	assert.InDelta(t, 99000.0+10*105, result.Equity[9].Value, 1e-9)

	fills, err := store.Fills(context.Background())
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.True(t, fills[0].At.Equal(date("2020-01-02")))
	assert.Equal(t, 10.0, fills[0].Quantity)

	points, err := store.Equity(context.Background())
	require.NoError(t, err)
	assert.Len(t, points, 10)
}

func TestEngine_OnEndReceivesFinalSnapshot(t *testing.T) {
	var final *core.LedgerSnapshot
	strategy := buyOnce("ACME", 10)
	strategy.onEnd = func(snapshot core.LedgerSnapshot) {
		final = &snapshot
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, final)
	assert.Equal(t, date("2020-01-10"), final.At)
	assert.InDelta(t, 99000.0, final.Cash, 1e-9)
}

func TestEngine_FailFastOnCallbackError(t *testing.T) {
	boom := errors.New("boom")
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			env.Schedule("exploder", rule.EveryWeekday(), rule.AtOpen(),
				func(_ context.Context, _ time.Time) error { return boom })
			return nil
		},
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, core.StateFailed, result.State)
	assert.Equal(t, core.StateFailed, engine.State())

	var cbErr *core.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, "exploder", cbErr.Name)
	assert.Equal(t, date("2020-01-02"), cbErr.At)
	assert.ErrorIs(t, err, boom)
}

func TestEngine_ContinuePolicyFinishesRun(t *testing.T) {
	cfg := testConfig()
	cfg.ErrorPolicy = core.ErrorPolicyContinue

	failures := 0
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			env.Schedule("exploder", rule.EveryWeekday(), rule.AtOpen(),
				func(_ context.Context, _ time.Time) error {
					failures++
					return errors.New("boom")
				})
			return nil
		},
	}

	engine, err := New(cfg, strategy, testCalendar(t), testFeed(), WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, result.State)
	// Trading days in the range: Jan 2, 3, 6, 7, 8, 9, 10.
	assert.Equal(t, 7, failures)
}

func TestEngine_InitializeFailure(t *testing.T) {
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, _ core.Environment) error {
			return errors.New("bad parameters")
		},
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, core.StateFailed, result.State)
}

func TestEngine_CalendarFailureFailsRun(t *testing.T) {
	cal := calendar.NewStatic()
	cal.Err = core.ErrCalendarUnavailable

	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			env.Schedule("any", rule.EveryDay(), rule.AtOpen(),
				func(_ context.Context, _ time.Time) error { return nil })
			return nil
		},
	}

	engine, err := New(testConfig(), strategy, cal, testFeed(), WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.ErrorIs(t, err, core.ErrCalendarUnavailable)
	assert.Equal(t, core.StateFailed, result.State)
}

func TestEngine_CancellationFinalizesEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			env.Schedule("counter", rule.EveryWeekday(), rule.AtOpen(),
				func(_ context.Context, _ time.Time) error {
					ticks++
					if ticks == 2 {
						cancel()
					}
					return nil
				})
			return nil
		},
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, result.State)
	assert.Equal(t, 2, ticks, "cancellation stops the loop between ticks")
}

func TestEngine_CannotRerun(t *testing.T) {
	engine, err := New(testConfig(), &scriptedStrategy{}, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.Error(t, err)
}

func TestEngine_OnEndPanicIsSwallowed(t *testing.T) {
	strategy := &scriptedStrategy{
		onEnd: func(_ core.LedgerSnapshot) { panic("surprise") },
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, result.State)
}

func TestEngine_ValidatesInputs(t *testing.T) {
	_, err := New(testConfig(), nil, testCalendar(t), testFeed())
	require.Error(t, err)

	_, err = New(testConfig(), &scriptedStrategy{}, nil, testFeed())
	require.Error(t, err)

	_, err = New(testConfig(), &scriptedStrategy{}, testCalendar(t), nil)
	require.Error(t, err)

	bad := testConfig()
	bad.StartingCash = -1
	_, err = New(bad, &scriptedStrategy{}, testCalendar(t), testFeed())
	require.Error(t, err)
}

func TestEngine_EnvironmentAccessors(t *testing.T) {
	cfg := testConfig()
	cal := testCalendar(t)
	priceFeed := testFeed()

	var env core.Environment
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, e core.Environment) error {
			env = e
			return nil
		},
	}

	engine, err := New(cfg, strategy, cal, priceFeed, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, env)
	assert.Equal(t, cfg, env.Config())
	assert.Equal(t, cal, env.Calendar())
	assert.NotNil(t, env.Ledger())
	assert.NotNil(t, env.Prices())
	assert.NotNil(t, env.Log())
}

func TestEngine_UnscheduleStopsFutureTicks(t *testing.T) {
	fired := 0
	strategy := &scriptedStrategy{
		initialize: func(_ context.Context, env core.Environment) error {
			var id core.ScheduleID
			id = env.Schedule("once", rule.EveryWeekday(), rule.AtOpen(),
				func(_ context.Context, _ time.Time) error {
					fired++
					env.Unschedule(id)
					return nil
				})
			return nil
		},
	}

	engine, err := New(testConfig(), strategy, testCalendar(t), testFeed(),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}
