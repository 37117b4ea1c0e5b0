package precompute

import (
	"math"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

const emotionWindowSeconds = 5.0

// EmotionExtractor traces the emotional journey: per-window dominant
// emotions, valence movement, peaks and their rhythm, and how tightly
// gestures ride the emotional highs.
type EmotionExtractor struct{}

func (e *EmotionExtractor) AnalysisType() string { return AnalysisEmotionalJourney }

func (e *EmotionExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	duration := tl.Duration()
	entries := tl.ByModality(timeline.ModalityExpression)

	var times, valences []float64
	var labels []string
	positive, negative, neutral := 0, 0, 0
	for _, entry := range entries {
		expr, ok := entry.Expression()
		if !ok {
			continue
		}
		times = append(times, entry.Start.Seconds())
		valences = append(valences, expr.Valence)
		labels = append(labels, markers.CanonicalEmotion(expr.Emotion))
		switch {
		case expr.Valence > 0.15:
			positive++
		case expr.Valence < -0.15:
			negative++
		default:
			neutral++
		}
	}

	present := presentModalities(tl)
	completeness := dataCompleteness(present,
		timeline.ModalityExpression, timeline.ModalityGesture)

	if len(times) == 0 {
		return FeatureBundle{
			"emotion_sequence":          []string{},
			"emotion_variability":       0.0,
			"emotion_change_rate":       0.0,
			"positive_ratio":            0.0,
			"negative_ratio":            0.0,
			"neutral_ratio":             0.0,
			"emotion_valence_curve":     []float64{},
			"emotional_peaks":           []stats.Peak{},
			"emotion_transition_matrix": stats.Transitions(nil),
			"emotional_trajectory":      string(stats.TrendFlat),
			"emotion_gesture_alignment": 0.0,
			"data_completeness":         completeness,
			"confidence":                0.3,
		}, nil
	}

	// Per-window dominant emotions and valence means
	windows := int(math.Ceil(duration / emotionWindowSeconds))
	if windows < 1 {
		windows = 1
	}
	windowEmotions := make([][]string, windows)
	for i, t := range times {
		idx := int(t / emotionWindowSeconds)
		if idx >= windows {
			idx = windows - 1
		}
		windowEmotions[idx] = append(windowEmotions[idx], labels[i])
	}
	sequence := make([]string, windows)
	for i, group := range windowEmotions {
		sequence[i] = stats.Dominant(group)
	}

	valenceCurve := stats.WindowMeans(times, valences, emotionWindowSeconds, duration)
	cleanCurve := make([]float64, 0, len(valenceCurve))
	for _, v := range valenceCurve {
		if math.IsNaN(v) {
			cleanCurve = append(cleanCurve, 0)
		} else {
			cleanCurve = append(cleanCurve, stats.RoundTo(v, 3))
		}
	}

	transitions := stats.Transitions(sequence)

	peaks := stats.TopKPeaks(times, valences, 5)
	var peakTimes []float64
	for _, p := range peaks {
		peakTimes = append(peakTimes, p.Time)
	}
	peakRhythm := stats.Intervals(peakTimes)

	gestureTimes := startTimes(tl, timeline.ModalityGesture)
	gestureAlignment := stats.AlignmentRatio(peakTimes, gestureTimes, 1.0)

	total := float64(len(times))
	return FeatureBundle{
		"emotion_sequence":          sequence,
		"emotion_variability":       stats.RoundTo(stats.StdDev(cleanCurve), 3),
		"emotion_change_rate":       stats.RoundTo(transitions.ChangeRate(), 3),
		"positive_ratio":            stats.RoundTo(float64(positive)/total, 3),
		"negative_ratio":            stats.RoundTo(float64(negative)/total, 3),
		"neutral_ratio":             stats.RoundTo(float64(neutral)/total, 3),
		"emotion_valence_curve":     cleanCurve,
		"emotional_peaks":           peaks,
		"emotion_transition_matrix": transitions,
		"peak_rhythm": map[string]any{
			"mean_spacing": stats.RoundTo(peakRhythm.Mean, 3),
			"variance":     stats.RoundTo(peakRhythm.Variance, 3),
			"regularity":   stats.RoundTo(peakRhythm.Regularity, 3),
		},
		"emotion_gesture_alignment": stats.RoundTo(gestureAlignment, 3),
		"emotional_trajectory":      string(stats.ClassifyTrend(cleanCurve, 0.02)),
		"data_completeness":         completeness,
		"confidence":                0.85,
	}, nil
}
