package precompute

import (
	"math"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// densityModalities are the creative-element channels density counts over.
var densityModalities = []timeline.Modality{
	timeline.ModalityTextOverlay,
	timeline.ModalitySticker,
	timeline.ModalitySceneChange,
	timeline.ModalityObject,
}

// DensityExtractor measures creative density: how much visual material hits
// the viewer per second, and how that pressure is shaped over the video.
type DensityExtractor struct{}

func (d *DensityExtractor) AnalysisType() string { return AnalysisCreativeDensity }

func (d *DensityExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "density_extractor",
		"video_id":  meta.VideoID,
	})

	duration := tl.Duration()
	seconds := int(math.Ceil(duration))
	if seconds < 1 {
		seconds = 1
	}

	// Per-second counts per modality, plus the combined series
	perModality := make(map[timeline.Modality][]int, len(densityModalities))
	combined := make([]int, seconds)
	for _, m := range densityModalities {
		counts := stats.PerSecondCounts(startTimes(tl, m), duration)
		perModality[m] = counts
		for i, c := range counts {
			combined[i] += c
		}
	}

	combinedF := stats.IntsToFloats(combined)
	s := stats.Describe(combinedF)

	// Dominant modality per second
	curve := make([]map[string]any, seconds)
	for i := 0; i < seconds; i++ {
		dominant := ""
		best := 0
		for _, m := range densityModalities {
			if perModality[m][i] > best {
				best = perModality[m][i]
				dominant = string(m)
			}
		}
		curve[i] = map[string]any{
			"second":   i,
			"count":    combined[i],
			"dominant": dominant,
		}
	}

	volatility := 0.0
	if s.Mean > 0 {
		volatility = s.StdDev / s.Mean
	}

	// Multi-modal peaks: seconds where at least three modalities land events
	var multiModalPeaks []int
	for i := 0; i < seconds; i++ {
		active := 0
		for _, m := range densityModalities {
			if perModality[m][i] > 0 {
				active++
			}
		}
		if active >= 3 {
			multiModalPeaks = append(multiModalPeaks, i)
		}
	}

	elementsPerSecond := 0.0
	totalElements := 0
	for _, c := range combined {
		totalElements += c
	}
	if duration > 0 {
		elementsPerSecond = float64(totalElements) / duration
	}

	classification := "medium"
	switch {
	case elementsPerSecond < 0.5:
		classification = "minimal"
	case elementsPerSecond > 1.5:
		classification = "heavy"
	}

	first, middle, last := stats.ThirdSums(combinedF)
	pattern := accelerationPattern(first, middle, last, combinedF)

	// Structural flags
	openingPeak := 0
	for i := 0; i < 3 && i < seconds; i++ {
		if combined[i] > openingPeak {
			openingPeak = combined[i]
		}
	}
	total := first + middle + last
	structural := map[string]bool{
		"strong_opening_hook": openingPeak >= 4,
		"crescendo":           stats.MonotoneRisingRun(combinedF) >= 5,
		"front_loaded":        total > 0 && first/total >= 0.5,
		"back_loaded":         total > 0 && last/total >= 0.5,
		"multi_modal_synced":  len(multiModalPeaks) > 0,
	}

	logger.Debug("creative density computed", logging.Fields{
		"elements": totalElements, "classification": classification,
	})

	present := presentModalities(tl)
	return FeatureBundle{
		"avg_density":            stats.RoundTo(s.Mean, 3),
		"max_density":            s.Max,
		"min_density":            s.Min,
		"std_density":            stats.RoundTo(s.StdDev, 3),
		"total_elements":         totalElements,
		"elements_per_second":    stats.RoundTo(elementsPerSecond, 3),
		"density_curve":          curve,
		"density_volatility":     stats.RoundTo(volatility, 3),
		"acceleration_pattern":   pattern,
		"multi_modal_peaks":      multiModalPeaks,
		"empty_seconds":          stats.EmptyBuckets(combined),
		"density_classification": classification,
		"structural_patterns":    structural,
		"density_rhythm":         stats.Rhythm(combinedF),
		"data_completeness": dataCompleteness(present,
			timeline.ModalityTextOverlay, timeline.ModalitySceneChange, timeline.ModalityObject),
		"confidence": 0.9,
	}, nil
}

// accelerationPattern classifies the first-vs-last-third balance, with an
// oscillation check for series that keep crossing their mean.
func accelerationPattern(first, middle, last float64, buckets []float64) string {
	total := first + middle + last
	if total == 0 {
		return "even"
	}

	mean := stats.Mean(buckets)
	crossings := 0
	for i := 1; i < len(buckets); i++ {
		if (buckets[i-1] < mean) != (buckets[i] < mean) {
			crossings++
		}
	}
	if len(buckets) >= 6 && crossings >= len(buckets)/2 {
		return "oscillating"
	}

	switch {
	case first >= 1.5*last && first > middle:
		return "front_loaded"
	case last >= 1.5*first && last > middle:
		return "back_loaded"
	default:
		return "even"
	}
}
