// Package metric computes performance statistics over backtest results.
package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the standard deviation of the values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Returns converts an equity curve into per-tick fractional returns.
func Returns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (equity[i]-equity[i-1])/equity[i-1])
	}
	return returns
}

// Payoff calculates the ratio of average wins to average losses.
func Payoff(values []float64) float64 {
	wins, losses := partition(values)

	if len(losses) == 0 || len(wins) == 0 {
		return 10 // Default value when one side is empty
	}

	avgWin := stat.Mean(wins, nil)
	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 10 // Prevent division by zero
	}
	return math.Abs(avgWin / avgLoss)
}

// ProfitFactor calculates the ratio of total profits to total losses.
func ProfitFactor(values []float64) float64 {
	var totalWins, totalLosses float64
	for _, value := range values {
		if value >= 0 {
			totalWins += value
		} else {
			totalLosses += value
		}
	}

	if totalLosses == 0 {
		return 10 // Default value when no losses
	}
	return math.Abs(totalWins / totalLosses)
}

// SQN (System Quality Number) = sqrt(n) * mean / stddev.
func SQN(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	sd := StdDev(values)
	if sd == 0 {
		return 0
	}
	return math.Sqrt(n) * Mean(values) / sd
}

// MaxDrawdown returns the largest peak-to-trough fractional decline of the
// equity curve, as a non-negative number.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	peak := equity[0]
	var maxDD float64
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		if peak > 0 {
			dd := (peak - value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// partition separates values into wins and losses.
func partition(values []float64) (wins []float64, losses []float64) {
	for _, value := range values {
		if value >= 0 {
			wins = append(wins, value)
		} else {
			losses = append(losses, value)
		}
	}
	return wins, losses
}
