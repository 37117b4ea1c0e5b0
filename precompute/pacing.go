package precompute

import (
	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

const pacingWindowSeconds = 10.0

// PacingExtractor measures editing rhythm from shot boundaries: shot
// durations, cuts per window, acceleration, dense zones and montage runs.
type PacingExtractor struct{}

func (p *PacingExtractor) AnalysisType() string { return AnalysisScenePacing }

func (p *PacingExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	duration := tl.Duration()
	cuts := startTimes(tl, timeline.ModalitySceneChange)

	present := presentModalities(tl)
	completeness := dataCompleteness(present, timeline.ModalitySceneChange)

	// Shot durations span cut-to-cut, with the head and tail included
	boundaries := append([]float64{0}, cuts...)
	boundaries = append(boundaries, duration)
	var shotDurations []float64
	for i := 1; i < len(boundaries); i++ {
		d := boundaries[i] - boundaries[i-1]
		if d > 0.01 {
			shotDurations = append(shotDurations, d)
		}
	}
	totalShots := len(shotDurations)
	durationStats := stats.Describe(shotDurations)

	shotsPerMinute := 0.0
	if duration > 0 {
		shotsPerMinute = float64(totalShots) / duration * 60
	}

	classification := classifyPacing(durationStats.Mean, totalShots)
	rhythmConsistency := classifyRhythm(durationStats)

	pacingCurve := stats.WindowCounts(cuts, pacingWindowSeconds, duration)
	curveF := stats.IntsToFloats(pacingCurve)

	zones := stats.AboveThresholdWindows(curveF, 1.0)
	zoneRanges := make([]map[string]any, 0, len(zones))
	for _, z := range zones {
		zoneRanges = append(zoneRanges, map[string]any{
			"window": z,
			"start":  float64(z) * pacingWindowSeconds,
			"cuts":   pacingCurve[z],
		})
	}

	montage := montageSegments(shotDurations, boundaries)

	return FeatureBundle{
		"total_shots":            totalShots,
		"avg_shot_duration":      stats.RoundTo(durationStats.Mean, 3),
		"min_shot_duration":      stats.RoundTo(durationStats.Min, 3),
		"max_shot_duration":      stats.RoundTo(durationStats.Max, 3),
		"shot_duration_variance": stats.RoundTo(durationStats.Variance, 3),
		"shots_per_minute":       stats.RoundTo(shotsPerMinute, 2),
		"pacing_classification":  classification,
		"rhythm_consistency":     rhythmConsistency,
		"acceleration_score":     stats.RoundTo(stats.AccelerationScore(curveF), 3),
		"pacing_curve":           pacingCurve,
		"cut_density_zones":      zoneRanges,
		"montage_segments":       montage,
		"cut_rhythm":             stats.Rhythm(curveF),
		"data_completeness":      completeness,
		"confidence":             0.9,
	}, nil
}

func classifyPacing(avgShot float64, totalShots int) string {
	if totalShots <= 1 {
		return "single_shot"
	}
	switch {
	case avgShot < 2:
		return "rapid"
	case avgShot < 4:
		return "fast"
	case avgShot < 8:
		return "moderate"
	default:
		return "slow"
	}
}

func classifyRhythm(s stats.SeriesStats) string {
	if s.NumSamples < 2 {
		return "uniform"
	}
	switch {
	case s.Variance < 1:
		return "consistent"
	case s.Variance < 4:
		return "varied"
	default:
		return "erratic"
	}
}

// montageSegments finds contiguous runs of sub-1.5s shots, at least three
// shots long.
func montageSegments(shotDurations, boundaries []float64) []map[string]any {
	var segments []map[string]any
	runStart := -1
	for i, d := range shotDurations {
		if d < 1.5 {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 && i-runStart >= 3 {
			segments = append(segments, map[string]any{
				"start": stats.RoundTo(boundaries[runStart], 2),
				"end":   stats.RoundTo(boundaries[i], 2),
				"shots": i - runStart,
			})
		}
		runStart = -1
	}
	if runStart >= 0 && len(shotDurations)-runStart >= 3 {
		segments = append(segments, map[string]any{
			"start": stats.RoundTo(boundaries[runStart], 2),
			"end":   stats.RoundTo(boundaries[len(shotDurations)], 2),
			"shots": len(shotDurations) - runStart,
		})
	}
	return segments
}
