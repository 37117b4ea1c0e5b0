package stats

import "math"

// PerSecondCounts buckets event times into one-second bins over [0, duration).
// Events exactly at duration land in the final bin.
func PerSecondCounts(times []float64, duration float64) []int {
	n := int(math.Ceil(duration))
	if n <= 0 {
		n = 1
	}
	counts := make([]int, n)
	for _, t := range times {
		if t < 0 {
			continue
		}
		idx := int(t)
		if idx >= n {
			idx = n - 1
		}
		counts[idx]++
	}
	return counts
}

// WindowCounts buckets event times into fixed-size windows. The final window
// may be shorter than windowSize.
func WindowCounts(times []float64, windowSize, duration float64) []int {
	if windowSize <= 0 || duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / windowSize))
	counts := make([]int, n)
	for _, t := range times {
		if t < 0 {
			continue
		}
		idx := int(t / windowSize)
		if idx >= n {
			idx = n - 1
		}
		counts[idx]++
	}
	return counts
}

// WindowMeans averages (time, value) samples into fixed-size windows.
// Windows with no samples carry NaN so callers can distinguish absence
// from a zero mean.
func WindowMeans(times, values []float64, windowSize, duration float64) []float64 {
	if windowSize <= 0 || duration <= 0 || len(times) != len(values) {
		return nil
	}
	n := int(math.Ceil(duration / windowSize))
	sums := make([]float64, n)
	counts := make([]int, n)
	for i, t := range times {
		if t < 0 {
			continue
		}
		idx := int(t / windowSize)
		if idx >= n {
			idx = n - 1
		}
		sums[idx] += values[i]
		counts[idx]++
	}
	means := make([]float64, n)
	for i := range means {
		if counts[i] == 0 {
			means[i] = math.NaN()
		} else {
			means[i] = sums[i] / float64(counts[i])
		}
	}
	return means
}

// IntsToFloats widens a count slice for the float-based helpers.
func IntsToFloats(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}

// ThirdSums splits a per-bucket series into thirds and sums each, the basis
// for front-loaded / back-loaded classification.
func ThirdSums(buckets []float64) (first, middle, last float64) {
	n := len(buckets)
	if n == 0 {
		return 0, 0, 0
	}
	a := n / 3
	b := 2 * n / 3
	for i, v := range buckets {
		switch {
		case i < a:
			first += v
		case i < b:
			middle += v
		default:
			last += v
		}
	}
	return first, middle, last
}

// EmptyBuckets counts zero-valued buckets.
func EmptyBuckets(counts []int) int {
	n := 0
	for _, c := range counts {
		if c == 0 {
			n++
		}
	}
	return n
}
