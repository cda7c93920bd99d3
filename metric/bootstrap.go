package metric

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is the confidence interval estimated by resampling.
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap estimates the confidence interval of a statistic by resampling
// the values with replacement sampleSize times and applying measure to each
// resample.
func Bootstrap(values []float64, measure func([]float64) float64, sampleSize int,
	confidence float64) BootstrapInterval {

	if len(values) == 0 {
		return BootstrapInterval{}
	}

	data := make([]float64, 0, sampleSize)
	for i := 0; i < sampleSize; i++ {
		samples := make([]float64, len(values))
		for j := range samples {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}

	tail := 1 - confidence
	sort.Float64s(data)

	mean, stdDev := stat.MeanStdDev(data, nil)
	return BootstrapInterval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}
