package stats

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 {
		t.Errorf("mean = %v, want 5", s.Mean)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.NumSamples != 8 {
		t.Errorf("samples = %d", s.NumSamples)
	}
	if empty := Describe(nil); empty.NumSamples != 0 || empty.Mean != 0 {
		t.Errorf("empty series = %+v", empty)
	}
}

func TestPerSecondCounts(t *testing.T) {
	counts := PerSecondCounts([]float64{0.1, 0.9, 1.5, 9.99, 10.0}, 10)
	if len(counts) != 10 {
		t.Fatalf("len = %d, want 10", len(counts))
	}
	if counts[0] != 2 || counts[1] != 1 {
		t.Errorf("counts = %v", counts)
	}
	// An event exactly at duration lands in the final bucket
	if counts[9] != 2 {
		t.Errorf("final bucket = %d, want 2", counts[9])
	}
}

func TestWindowMeansNaNForEmpty(t *testing.T) {
	means := WindowMeans([]float64{1, 2}, []float64{0.5, 0.7}, 5, 15)
	if len(means) != 3 {
		t.Fatalf("len = %d, want 3", len(means))
	}
	if math.Abs(means[0]-0.6) > 1e-9 {
		t.Errorf("means[0] = %v, want 0.6", means[0])
	}
	if !math.IsNaN(means[1]) || !math.IsNaN(means[2]) {
		t.Errorf("empty windows must carry NaN: %v", means)
	}
}

func TestThirdSums(t *testing.T) {
	first, middle, last := ThirdSums([]float64{1, 1, 1, 2, 2, 2, 3, 3, 3})
	if first != 3 || middle != 6 || last != 9 {
		t.Errorf("thirds = %v %v %v", first, middle, last)
	}
}

func TestTopKPeaks(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	values := []float64{0.1, -0.9, 0.5, 0.9, 0.2}
	peaks := TopKPeaks(times, values, 2)
	if len(peaks) != 2 {
		t.Fatalf("len = %d", len(peaks))
	}
	// Equal magnitudes tie-break on earlier time
	if peaks[0].Time != 1 || peaks[1].Time != 3 {
		t.Errorf("peaks = %+v", peaks)
	}
}

func TestIntervalsRegularity(t *testing.T) {
	uniform := Intervals([]float64{0, 2, 4, 6, 8})
	if uniform.Mean != 2 || uniform.Regularity != 1 {
		t.Errorf("uniform intervals = %+v", uniform)
	}
	jittered := Intervals([]float64{0, 0.2, 4, 4.3, 9})
	if jittered.Regularity >= uniform.Regularity {
		t.Errorf("jittered regularity %v should be below uniform %v",
			jittered.Regularity, uniform.Regularity)
	}
}

func TestBursts(t *testing.T) {
	bursts := Bursts([]float64{0, 0.5, 1, 5, 9, 9.1, 9.2, 9.3}, 2, 3)
	if len(bursts) != 2 {
		t.Fatalf("bursts = %+v, want 2", bursts)
	}
	if bursts[0].Count != 3 || bursts[1].Count != 4 {
		t.Errorf("burst counts = %d, %d", bursts[0].Count, bursts[1].Count)
	}
}

func TestAlignmentRatio(t *testing.T) {
	got := AlignmentRatio([]float64{1, 5, 9}, []float64{1.2, 8.8}, 0.3)
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("alignment = %v, want 2/3", got)
	}
	if AlignmentRatio(nil, []float64{1}, 1) != 0 {
		t.Error("empty times must score 0")
	}
}

func TestTransitions(t *testing.T) {
	m := Transitions([]string{"happy", "happy", "sad", "happy"})
	if m.Transitions != 3 || m.Changes != 2 {
		t.Errorf("transitions=%d changes=%d", m.Transitions, m.Changes)
	}
	if math.Abs(m.ChangeRate()-2.0/3.0) > 1e-9 {
		t.Errorf("change rate = %v", m.ChangeRate())
	}
	if m.Probabilities["happy"]["sad"] != 0.5 {
		t.Errorf("P(happy->sad) = %v, want 0.5", m.Probabilities["happy"]["sad"])
	}
}

func TestDominant(t *testing.T) {
	if got := Dominant([]string{"a", "b", "b", "", "a", "b"}); got != "b" {
		t.Errorf("dominant = %q", got)
	}
	if got := Dominant(nil); got != "" {
		t.Errorf("dominant of empty = %q", got)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		values []float64
		want   TrendShape
	}{
		{[]float64{0, 0.2, 0.4, 0.6, 0.8}, TrendAscending},
		{[]float64{0.8, 0.6, 0.4, 0.2, 0}, TrendDescending},
		{[]float64{0.9, 0.4, 0.0, 0.4, 0.9}, TrendUShaped},
		{[]float64{0.5, 0.5, 0.5, 0.5}, TrendFlat},
	}
	for _, tc := range tests {
		if got := ClassifyTrend(tc.values, 0.02); got != tc.want {
			t.Errorf("ClassifyTrend(%v) = %v, want %v", tc.values, got, tc.want)
		}
	}
}

func TestFitLine(t *testing.T) {
	fit := FitLine([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	if math.Abs(fit.Slope-2) > 1e-9 || math.Abs(fit.Intercept-1) > 1e-9 {
		t.Errorf("fit = %+v, want slope 2 intercept 1", fit)
	}
}

func TestRhythmPeriodicSeries(t *testing.T) {
	periodic := []float64{5, 0, 5, 0, 5, 0, 5, 0, 5, 0, 5, 0}
	r := Rhythm(periodic)
	if r.PeriodBuckets != 2 {
		t.Errorf("period = %d, want 2", r.PeriodBuckets)
	}
	if r.Regularity < 0.5 {
		t.Errorf("regularity = %v, want high for periodic series", r.Regularity)
	}
	if flat := Rhythm([]float64{1, 1, 1, 1}); flat.Regularity != 0 {
		t.Errorf("constant series regularity = %v, want 0", flat.Regularity)
	}
}

func TestAccelerationScore(t *testing.T) {
	if got := AccelerationScore([]float64{1, 2, 3, 4}); got <= 0 {
		t.Errorf("rising series score = %v, want positive", got)
	}
	if got := AccelerationScore([]float64{4, 3, 2, 1}); got >= 0 {
		t.Errorf("falling series score = %v, want negative", got)
	}
}
