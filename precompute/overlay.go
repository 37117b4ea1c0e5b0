package precompute

import (
	"strings"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/lexicon"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

const clutterWindowSeconds = 5.0

// ReadabilityWeights are the calibrated constants behind the readability
// score. They are configurable, not derived.
type ReadabilityWeights struct {
	Area     float64 `json:"area"`
	Position float64 `json:"position"`
	Contrast float64 `json:"contrast"`
}

// DefaultReadabilityWeights is the calibrated default blend.
var DefaultReadabilityWeights = ReadabilityWeights{Area: 0.5, Position: 0.3, Contrast: 0.2}

// OverlayExtractor measures the on-screen text strategy: cadence, clutter,
// readability, positions, semantic grouping, CTA reinforcement and alignment
// with the spoken transcript.
type OverlayExtractor struct {
	Weights ReadabilityWeights
}

func (o *OverlayExtractor) AnalysisType() string { return AnalysisVisualOverlay }

func (o *OverlayExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	duration := tl.Duration()
	overlays := tl.ByModality(timeline.ModalityTextOverlay)

	present := presentModalities(tl)
	completeness := dataCompleteness(present,
		timeline.ModalityTextOverlay, timeline.ModalitySpeech)

	var times []float64
	var areas []float64
	var displayDurations []float64
	uniqueTexts := make(map[string]bool)
	positions := make(map[string]int)
	sizeCounts := make(map[string]int)
	semanticGroups := map[string][]string{
		"product_mentions": {},
		"urgency_phrases":  {},
		"social_proof":     {},
		"questions":        {},
		"other":            {},
	}
	var ctaTimes []float64
	timeToFirst := -1.0

	for _, e := range overlays {
		overlay, ok := e.TextOverlay()
		if !ok {
			continue
		}
		t := e.Start.Seconds()
		times = append(times, t)
		if timeToFirst < 0 || t < timeToFirst {
			timeToFirst = t
		}
		uniqueTexts[strings.ToLower(strings.TrimSpace(overlay.Text))] = true
		positions[overlay.Position]++
		sizeCounts[overlay.SizeClass]++
		areas = append(areas, overlay.BBox.Area())
		if e.End != nil {
			displayDurations = append(displayDurations, e.End.Seconds()-t)
		}

		group := classifySemantic(overlay.Text)
		semanticGroups[group] = append(semanticGroups[group], markersTruncate(overlay.Text))

		if overlay.Category == timeline.TextCategoryCTA ||
			lexicon.MatchAny(overlay.Text, lexicon.CTA) {
			ctaTimes = append(ctaTimes, t)
		}
	}

	if timeToFirst < 0 {
		timeToFirst = duration
	}

	avgPerSecond := 0.0
	if duration > 0 {
		avgPerSecond = float64(len(times)) / duration
	}

	intervals := stats.Intervals(times)
	bursts := stats.Bursts(times, 2.0, 3)
	perSecond := stats.PerSecondCounts(times, duration)
	breathingRoom := 0.0
	if duration > 0 {
		breathingRoom = float64(stats.EmptyBuckets(perSecond)) / duration
	}

	clutter := stats.WindowCounts(times, clutterWindowSeconds, duration)

	// Size variance over the ordinal size ranks
	var sizeRanks []float64
	for _, e := range overlays {
		if overlay, ok := e.TextOverlay(); ok {
			sizeRanks = append(sizeRanks, float64(sizeOrd(overlay.SizeClass)))
		}
	}

	positionDistribution := make(map[string]float64, len(positions))
	if len(times) > 0 {
		for p, c := range positions {
			positionDistribution[p] = stats.RoundTo(float64(c)/float64(len(times)), 3)
		}
	}

	weights := o.Weights
	if weights == (ReadabilityWeights{}) {
		weights = DefaultReadabilityWeights
	}
	readability := readabilityComponents(areas, positions, len(times), weights)

	// CTA reinforcement: which channels land within half a second of a CTA
	gestureTimes := startTimes(tl, timeline.ModalityGesture)
	stickerTimes := startTimes(tl, timeline.ModalitySticker)
	reinforcement := map[string]any{
		"cta_count":    len(ctaTimes),
		"gesture_near": countNear(gestureTimes, ctaTimes, 0.5),
		"sticker_near": countNear(stickerTimes, ctaTimes, 0.5),
		"text_near":    countNear(times, ctaTimes, 0.5),
	}

	alignment := textSpeechAlignment(tl, overlays)

	return FeatureBundle{
		"avg_texts_per_second":      stats.RoundTo(avgPerSecond, 3),
		"unique_text_count":         len(uniqueTexts),
		"time_to_first_text":        stats.RoundTo(timeToFirst, 2),
		"avg_text_display_duration": stats.RoundTo(stats.Mean(displayDurations), 3),
		"overlay_rhythm": map[string]any{
			"mean_interval":        stats.RoundTo(intervals.Mean, 3),
			"interval_variance":    stats.RoundTo(intervals.Variance, 3),
			"regularity":           stats.RoundTo(intervals.Regularity, 3),
			"burst_windows":        bursts,
			"breathing_room_ratio": stats.RoundTo(breathingRoom, 3),
		},
		"clutter_timeline":           clutter,
		"readability_components":     readability,
		"text_position_distribution": positionDistribution,
		"text_size_variance":         stats.RoundTo(stats.Describe(sizeRanks).Variance, 3),
		"cta_reinforcement_matrix":   reinforcement,
		"text_semantic_groups":       semanticGroups,
		"text_speech_alignment":      stats.RoundTo(alignment, 3),
		"data_completeness":          completeness,
		"confidence":                 0.85,
	}, nil
}

func sizeOrd(size string) int {
	switch size {
	case timeline.TextSizeXL:
		return 3
	case timeline.TextSizeL:
		return 2
	case timeline.TextSizeM:
		return 1
	default:
		return 0
	}
}

func classifySemantic(text string) string {
	switch {
	case lexicon.MatchAny(text, lexicon.ProductMentions):
		return "product_mentions"
	case lexicon.MatchAny(text, lexicon.UrgencyHigh) || lexicon.MatchAny(text, lexicon.UrgencyMedium):
		return "urgency_phrases"
	case lexicon.MatchAny(text, lexicon.SocialProof):
		return "social_proof"
	case strings.Contains(text, "?"):
		return "questions"
	default:
		return "other"
	}
}

func markersTruncate(text string) string {
	runes := []rune(text)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return text
}

// readabilityComponents approximates readability from bbox area and position
// spread. Contrast is unavailable from the adapters, so its weight
// redistributes onto area.
func readabilityComponents(areas []float64, positions map[string]int, total int, weights ReadabilityWeights) map[string]any {
	areaStats := stats.Describe(areas)
	areaScore := stats.Clamp01(areaStats.Mean / 0.08)

	// Text parked in the middle or bottom band reads best on a vertical video
	positionScore := 0.0
	if total > 0 {
		favorable := 0
		for p, c := range positions {
			if strings.HasPrefix(p, "middle") || strings.HasPrefix(p, "bottom") {
				favorable += c
			}
		}
		positionScore = float64(favorable) / float64(total)
	}

	areaWeight := weights.Area + weights.Contrast
	return map[string]any{
		"area_score":     stats.RoundTo(areaScore, 3),
		"position_score": stats.RoundTo(positionScore, 3),
		"overall":        stats.RoundTo(areaWeight*areaScore+weights.Position*positionScore, 3),
	}
}

func countNear(times, anchors []float64, tolerance float64) int {
	n := 0
	for _, t := range times {
		if stats.NearAny(t, anchors, tolerance) {
			n++
		}
	}
	return n
}

// textSpeechAlignment is the fraction of overlay texts that echo a
// transcript bigram within one second of appearing.
func textSpeechAlignment(tl *timeline.Timeline, overlays []timeline.Entry) float64 {
	speeches := tl.ByModality(timeline.ModalitySpeech)
	if len(speeches) == 0 || len(overlays) == 0 {
		return 0
	}

	aligned := 0
	counted := 0
	for _, e := range overlays {
		overlay, ok := e.TextOverlay()
		if !ok {
			continue
		}
		tokens := strings.Fields(strings.ToLower(overlay.Text))
		if len(tokens) == 0 {
			continue
		}
		counted++
		t := e.Start.Seconds()

		for _, se := range speeches {
			start := se.Start.Seconds() - 1.0
			end := se.Start.Seconds() + 1.0
			if se.End != nil {
				end = se.End.Seconds() + 1.0
			}
			if t < start || t > end {
				continue
			}
			speech, okS := se.Speech()
			if !okS {
				continue
			}
			if matchesNGram(tokens, strings.Fields(strings.ToLower(speech.Text))) {
				aligned++
				break
			}
		}
	}
	if counted == 0 {
		return 0
	}
	return float64(aligned) / float64(counted)
}

// matchesNGram reports whether the overlay tokens share a bigram (or the
// single token, for one-word overlays) with the transcript tokens.
func matchesNGram(overlay, transcript []string) bool {
	if len(overlay) == 1 {
		for _, t := range transcript {
			if t == overlay[0] {
				return true
			}
		}
		return false
	}
	for i := 0; i+1 < len(overlay); i++ {
		for j := 0; j+1 < len(transcript); j++ {
			if overlay[i] == transcript[j] && overlay[i+1] == transcript[j+1] {
				return true
			}
		}
	}
	return false
}
