package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantforge/algotick/core"
)

const sampleConfig = `
range:
  start: "2020-01-01"
  end: "2020-12-31"
  resolution: daily
starting_cash: 100000
error_policy: continue-and-log
calendar:
  open: "09:30"
  close: "16:00"
  holidays:
    - "2020-01-01"
    - "2020-12-25"
data:
  - symbol: ACME
    file: acme.csv
    timeframe: 1d
strategy:
  name: buy-hold
  params:
    symbol: ACME
    quantity: 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	runCfg, err := cfg.runConfig()
	require.NoError(t, err)
	assert.Equal(t, 100000.0, runCfg.StartingCash)
	assert.Equal(t, core.Daily, runCfg.Range.Resolution)
	assert.Equal(t, core.ErrorPolicyContinue, runCfg.Policy())
	assert.Equal(t, 366, runCfg.Range.Ticks())

	assert.Equal(t, "buy-hold", cfg.Strategy.Name)
	assert.Equal(t, "ACME", cfg.Strategy.Params.Symbol)
	assert.Equal(t, 10.0, cfg.Strategy.Params.Quantity)

	feeds := cfg.symbolFeeds()
	require.Len(t, feeds, 1)
	assert.Equal(t, "ACME", feeds[0].Symbol)
	assert.Equal(t, "1d", feeds[0].Timeframe)
}

func TestLoadConfig_Calendar(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cal, err := cfg.calendar()
	require.NoError(t, err)

	trading, err := cal.IsTradingDay(date(t, "2020-01-01"))
	require.NoError(t, err)
	assert.False(t, trading, "configured holiday")

	trading, err = cal.IsTradingDay(date(t, "2020-01-02"))
	require.NoError(t, err)
	assert.True(t, trading)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig("does-not-exist.yaml")
	require.Error(t, err)

	_, err = loadConfig(writeConfig(t, "range: ["))
	require.Error(t, err)

	cfg, err := loadConfig(writeConfig(t, `
range:
  start: "2020-12-31"
  end: "2020-01-01"
`))
	require.NoError(t, err)
	_, err = cfg.runConfig()
	require.Error(t, err, "inverted range is rejected")
}

func date(t *testing.T, s string) (d time.Time) {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
