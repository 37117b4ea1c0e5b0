package stats

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// RhythmResult scores the periodicity of a bucketed event series.
type RhythmResult struct {
	// Regularity in [0,1]: 1 for a perfectly periodic series.
	Regularity float64 `json:"regularity"`
	// PeriodBuckets is the dominant period in bucket units, 0 when aperiodic.
	PeriodBuckets int `json:"period_buckets"`
}

// Rhythm measures how periodic a per-bucket count series is via FFT
// autocorrelation. Series shorter than four buckets, or with no events,
// score zero.
func Rhythm(buckets []float64) RhythmResult {
	n := len(buckets)
	if n < 4 {
		return RhythmResult{}
	}

	mean := Mean(buckets)
	centered := make([]float64, n)
	energy := 0.0
	for i, v := range buckets {
		centered[i] = v - mean
		energy += centered[i] * centered[i]
	}
	if energy == 0 {
		return RhythmResult{}
	}

	// Autocorrelation via the Wiener-Khinchin theorem, zero-padded to avoid
	// circular wrap.
	padded := make([]float64, 2*n)
	copy(padded, centered)
	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(cmplx.Abs(c)*cmplx.Abs(c), 0)
	}
	acorr := fft.IFFT(spectrum)

	norm := real(acorr[0])
	if norm <= 0 {
		return RhythmResult{}
	}

	// Strongest positive lag away from zero
	bestLag, bestVal := 0, 0.0
	for lag := 1; lag < n; lag++ {
		v := real(acorr[lag]) / norm
		if v > bestVal {
			bestVal = v
			bestLag = lag
		}
	}

	if bestLag == 0 || bestVal <= 0 {
		return RhythmResult{}
	}
	return RhythmResult{
		Regularity:    Clamp01(bestVal),
		PeriodBuckets: bestLag,
	}
}

// AccelerationScore is the normalized slope of a bucketed count series:
// positive when activity grows toward the end. Normalized by the mean so the
// score is comparable across videos.
func AccelerationScore(buckets []float64) float64 {
	if len(buckets) < 2 {
		return 0
	}
	xs := make([]float64, len(buckets))
	for i := range xs {
		xs[i] = float64(i)
	}
	fit := FitLine(xs, buckets)
	mean := Mean(buckets)
	if mean == 0 {
		return 0
	}
	return fit.Slope / mean
}

// RoundTo rounds v to the given number of decimal places. Serialized metric
// bundles carry rounded values to keep payloads stable across runs.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
