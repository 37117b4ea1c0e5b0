// Package stats is the shared statistical toolkit behind the precompute
// extractors: descriptive moments, per-second bucketing, window aggregation,
// peak picking, inter-event intervals, markov transitions, trend fitting and
// rhythm scoring over event-time series.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SeriesStats contains descriptive statistics for a numeric series.
type SeriesStats struct {
	Mean                   float64 `json:"mean"`
	Variance               float64 `json:"variance"`
	StdDev                 float64 `json:"std_dev"`
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	NumSamples             int     `json:"num_samples"`
}

// Describe computes descriptive statistics over the series. An empty series
// yields the zero value.
func Describe(values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}

	mean, variance := stat.MeanVariance(values, nil)
	if len(values) == 1 {
		variance = 0
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	cv := 0.0
	if mean != 0 {
		cv = math.Sqrt(variance) / math.Abs(mean)
	}

	return SeriesStats{
		Mean:                   mean,
		Variance:               variance,
		StdDev:                 math.Sqrt(variance),
		Min:                    min,
		Max:                    max,
		CoefficientOfVariation: cv,
		NumSamples:             len(values),
	}
}

// Mean returns the arithmetic mean, zero for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample (n-1) standard deviation used across the
// extractors, zero for series shorter than two samples.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return math.Sqrt(stat.Variance(values, nil))
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v into [0, 1], the range every confidence carries.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
