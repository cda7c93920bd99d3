package main

import (
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/quantforge/algotick/calendar"
	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/feed"
	"github.com/quantforge/algotick/strategies"
)

const dateLayout = "2006-01-02"

// dataEntry maps one symbol to its price file.
type dataEntry struct {
	Symbol    string `yaml:"symbol"`
	File      string `yaml:"file"`
	Timeframe string `yaml:"timeframe"`
}

// fileConfig is the YAML run configuration.
type fileConfig struct {
	Range struct {
		Start      string `yaml:"start"`
		End        string `yaml:"end"`
		Resolution string `yaml:"resolution"`
	} `yaml:"range"`

	StartingCash float64 `yaml:"starting_cash"`
	Margin       bool    `yaml:"margin"`
	AllowFlip    bool    `yaml:"allow_flip"`
	ErrorPolicy  string  `yaml:"error_policy"`

	Calendar struct {
		Open     string   `yaml:"open"`
		Close    string   `yaml:"close"`
		Location string   `yaml:"location"`
		Holidays []string `yaml:"holidays"`
	} `yaml:"calendar"`

	Data []dataEntry `yaml:"data"`

	Strategy struct {
		Name   string            `yaml:"name"`
		Params strategies.Params `yaml:"params"`
	} `yaml:"strategy"`

	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		Token   string `yaml:"token"`
		Users   []int  `yaml:"users"`
	} `yaml:"telegram"`
}

func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &fileConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *fileConfig) runConfig() (core.RunConfig, error) {
	start, err := time.Parse(dateLayout, c.Range.Start)
	if err != nil {
		return core.RunConfig{}, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := time.Parse(dateLayout, c.Range.End)
	if err != nil {
		return core.RunConfig{}, fmt.Errorf("invalid range end: %w", err)
	}

	resolution := core.Daily
	if c.Range.Resolution != "" {
		resolution, err = core.ParseResolution(c.Range.Resolution)
		if err != nil {
			return core.RunConfig{}, err
		}
	}

	cfg := core.RunConfig{
		Range: core.SimulationRange{
			Start:      start,
			End:        end,
			Resolution: resolution,
		},
		StartingCash: c.StartingCash,
		Margin:       c.Margin,
		AllowFlip:    c.AllowFlip,
		ErrorPolicy:  core.ErrorPolicy(c.ErrorPolicy),
	}
	return cfg, cfg.Validate()
}

func (c *fileConfig) calendar() (core.Calendar, error) {
	open, close := c.Calendar.Open, c.Calendar.Close
	if open == "" {
		open = "09:30"
	}
	if close == "" {
		close = "16:00"
	}

	var options []calendar.Option
	if c.Calendar.Location != "" {
		loc, err := time.LoadLocation(c.Calendar.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid calendar location: %w", err)
		}
		options = append(options, calendar.WithLocation(loc))
	}

	if len(c.Calendar.Holidays) > 0 {
		holidays := make([]time.Time, 0, len(c.Calendar.Holidays))
		for _, raw := range c.Calendar.Holidays {
			date, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("invalid holiday %q: %w", raw, err)
			}
			holidays = append(holidays, date)
		}
		options = append(options, calendar.WithHolidays(holidays...))
	}

	return calendar.NewWeekday(open, close, options...)
}

func (c *fileConfig) symbolFeeds() []feed.SymbolFeed {
	return lo.Map(c.Data, func(d dataEntry, _ int) feed.SymbolFeed {
		return feed.SymbolFeed{Symbol: d.Symbol, File: d.File, Timeframe: d.Timeframe}
	})
}
