// Package feed provides price-feed collaborators. The engine and
// strategies only depend on core.PriceFeed; these are the stock
// implementations.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/quantforge/algotick/core"
)

// defaultHeaderMap defines the standard CSV column mapping.
var defaultHeaderMap = map[string]int{
	"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
}

// PricePoint is one observed price.
type PricePoint struct {
	Time  time.Time
	Value float64
}

// SymbolFeed maps a symbol to a CSV file of bars. Timeframe is the bar
// duration of the file, eg. "1d" or "1h".
type SymbolFeed struct {
	Symbol    string
	File      string
	Timeframe string
}

// CSVFeed serves historical prices read from CSV files. A symbol's price
// at an instant is the close of the last bar at or before it.
type CSVFeed struct {
	points map[string][]PricePoint
}

// NewCSVFeed loads all symbol files. Rows are time,open,close,low,high,
// volume with unix timestamps; a header row is optional.
func NewCSVFeed(feeds ...SymbolFeed) (*CSVFeed, error) {
	f := &CSVFeed{points: make(map[string][]PricePoint)}

	for _, sf := range feeds {
		if _, err := str2duration.ParseDuration(sf.Timeframe); err != nil {
			return nil, fmt.Errorf("invalid timeframe %q for %s: %w", sf.Timeframe, sf.Symbol, err)
		}

		points, err := readPointsFromCSV(sf.File)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", sf.File, err)
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
		f.points[sf.Symbol] = points
	}
	return f, nil
}

func readPointsFromCSV(file string) ([]PricePoint, error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, fmt.Errorf("empty csv file")
	}

	headerMap, hasHeader := parseHeaders(csvLines[0])
	if hasHeader {
		csvLines = csvLines[1:]
	}

	points := make([]PricePoint, 0, len(csvLines))
	for _, line := range csvLines {
		timestamp, err := strconv.Atoi(line[headerMap["time"]])
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(line[headerMap["close"]], 64)
		if err != nil {
			return nil, err
		}
		points = append(points, PricePoint{
			Time:  time.Unix(int64(timestamp), 0).UTC(),
			Value: value,
		})
	}
	return points, nil
}

// parseHeaders analyzes the first CSV row and returns an index map.
func parseHeaders(headers []string) (map[string]int, bool) {
	// A numeric first column means there is no header row.
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, false
	}

	headerMap := make(map[string]int)
	for index, header := range headers {
		headerMap[header] = index
	}
	return headerMap, true
}

// PriceAt implements core.PriceFeed.
func (f *CSVFeed) PriceAt(_ context.Context, symbol string, at time.Time) (float64, error) {
	points, ok := f.points[symbol]
	if !ok || len(points) == 0 {
		return 0, core.ErrMissingPrice
	}

	// First point strictly after `at`.
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Time.After(at)
	})
	if i == 0 {
		return 0, core.ErrMissingPrice
	}
	return points[i-1].Value, nil
}

// History returns up to n closing prices at or before `until`, oldest
// first. Strategies feed these into indicator functions.
func (f *CSVFeed) History(symbol string, until time.Time, n int) []float64 {
	points, ok := f.points[symbol]
	if !ok {
		return nil
	}

	i := sort.Search(len(points), func(i int) bool {
		return points[i].Time.After(until)
	})
	start := i - n
	if start < 0 {
		start = 0
	}
	return lo.Map(points[start:i], func(p PricePoint, _ int) float64 {
		return p.Value
	})
}

// Symbols returns the symbols the feed covers.
func (f *CSVFeed) Symbols() []string {
	return lo.Keys(f.points)
}
