package algotick

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/metric"
)

// Summary displays the run outcome in stdout: final positions, cash and
// realized P&L, equity statistics and a histogram of per-tick returns.
// Call after Run.
func (e *Engine) Summary() {
	final := e.book.Snapshot(e.clock.Now())

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Symbol", "Quantity", "Avg Cost", "Last Price", "Market Value"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var positionsValue float64
	for _, pos := range final.Positions {
		last := e.lastPrices[pos.Symbol]
		value := pos.MarketValue(last)
		positionsValue += value
		table.Append([]string{
			pos.Symbol,
			fmt.Sprintf("%.4f", pos.Quantity),
			fmt.Sprintf("%.4f", pos.AvgCost),
			fmt.Sprintf("%.4f", last),
			fmt.Sprintf("%.2f", value),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(len(final.Positions)),
		"", "",
		fmt.Sprintf("%.2f", positionsValue),
	})
	table.Render()

	fmt.Println(buffer.String())
	fmt.Println("------ PORTFOLIO -------")
	fmt.Printf("STATE         = %s\n", e.state)
	fmt.Printf("CASH          = %.2f\n", final.Cash)
	fmt.Printf("REALIZED P&L  = %.2f\n", final.Realized)
	fmt.Printf("TOTAL VALUE   = %.2f\n", final.Cash+positionsValue)
	fmt.Println()

	if len(e.equity) < 2 {
		return
	}

	equity := lo.Map(e.equity, func(p core.EquityPoint, _ int) float64 { return p.Value })
	returns := metric.Returns(equity)

	fmt.Println("------ EQUITY -------")
	fmt.Printf("TICKS         = %d\n", len(equity))
	fmt.Printf("START EQUITY  = %.2f\n", equity[0])
	fmt.Printf("FINAL EQUITY  = %.2f\n", equity[len(equity)-1])
	fmt.Printf("MAX DRAWDOWN  = %.2f %%\n", metric.MaxDrawdown(equity)*100)
	fmt.Printf("SQN           = %.2f\n", metric.SQN(returns))
	fmt.Printf("PROFIT FACTOR = %.2f\n", metric.ProfitFactor(returns))
	fmt.Println()

	fmt.Println("------ RETURN -------")
	returnsPercent := lo.Map(returns, func(r float64, _ int) float64 { return r * 100 })
	hist := histogram.Hist(15, returnsPercent)
	_ = histogram.Fprint(os.Stdout, hist, histogram.Linear(10))
	fmt.Println()

	interval := metric.Bootstrap(returns, metric.Mean, 10000, 0.95)
	fmt.Println("------ CONFIDENCE INTERVAL (95%) -------")
	fmt.Printf("RETURN: %.4f%% (%.4f%% ~ %.4f%%)\n",
		interval.Mean*100, interval.Lower*100, interval.Upper*100)
	fmt.Println()
}
