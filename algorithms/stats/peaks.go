package stats

import "sort"

// Peak is one ranked sample from a series.
type Peak struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// TopKPeaks returns the k samples with the largest absolute value, ordered by
// descending |value| and, for ties, ascending time.
func TopKPeaks(times, values []float64, k int) []Peak {
	if k <= 0 || len(values) == 0 || len(times) != len(values) {
		return nil
	}
	peaks := make([]Peak, len(values))
	for i := range values {
		peaks[i] = Peak{Index: i, Time: times[i], Value: values[i]}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		ai, aj := abs(peaks[i].Value), abs(peaks[j].Value)
		if ai != aj {
			return ai > aj
		}
		return peaks[i].Time < peaks[j].Time
	})
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	return peaks
}

// AboveThresholdWindows returns indices of buckets whose value meets or
// exceeds mean + sigmas*stddev. Used for cut-density zones and speech bursts.
func AboveThresholdWindows(buckets []float64, sigmas float64) []int {
	if len(buckets) == 0 {
		return nil
	}
	s := Describe(buckets)
	threshold := s.Mean + sigmas*s.StdDev
	var out []int
	for i, v := range buckets {
		if v >= threshold && v > 0 {
			out = append(out, i)
		}
	}
	return out
}

// MonotoneRisingRun returns the length of the longest strictly non-decreasing
// run with at least one increase. Used for crescendo detection.
func MonotoneRisingRun(buckets []float64) int {
	best, run := 0, 1
	rose := false
	for i := 1; i < len(buckets); i++ {
		if buckets[i] >= buckets[i-1] {
			run++
			if buckets[i] > buckets[i-1] {
				rose = true
			}
			if rose && run > best {
				best = run
			}
		} else {
			run = 1
			rose = false
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
