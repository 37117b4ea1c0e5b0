package precompute

import (
	"strings"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/lexicon"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// Pause classification bounds, in seconds.
const (
	pauseFloor     = 0.3
	breathPause    = 0.5
	strategicPause = 1.0
	dramaticPause  = 2.0
)

// SpeechExtractor measures verbal delivery: rate, coverage, pauses, fillers,
// hooks and CTAs, repetition, bursts and gesture synchronization.
type SpeechExtractor struct{}

func (s *SpeechExtractor) AnalysisType() string { return AnalysisSpeech }

func (s *SpeechExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	duration := tl.Duration()
	segments := tl.ByModality(timeline.ModalitySpeech)

	present := presentModalities(tl)
	completeness := dataCompleteness(present,
		timeline.ModalitySpeech, timeline.ModalityGesture)

	wordCount := 0
	speechSeconds := 0.0
	var allText strings.Builder
	var wordTimes []float64 // word midpoints for windowed wpm
	var stressedTimes []float64
	var segs []speechSegment

	for _, e := range segments {
		speech, ok := e.Speech()
		if !ok {
			continue
		}
		words := strings.Fields(speech.Text)
		wordCount += len(words)
		allText.WriteString(speech.Text)
		allText.WriteString(" ")

		end := e.Start.Seconds()
		if e.End != nil {
			end = e.End.Seconds()
			speechSeconds += e.End.Seconds() - e.Start.Seconds()
		}
		segs = append(segs, speechSegment{start: e.Start.Seconds(), end: end, text: speech.Text})

		if len(speech.Words) > 0 {
			for _, w := range speech.Words {
				mid := (w.Start.Seconds() + w.End.Seconds()) / 2
				wordTimes = append(wordTimes, mid)
				// Stressed words approximated by word spans longer
				// than 0.35 s
				if w.End.Seconds()-w.Start.Seconds() > 0.35 {
					stressedTimes = append(stressedTimes, mid)
				}
			}
		} else {
			// Spread word times evenly over the segment
			span := end - e.Start.Seconds()
			for i := range words {
				frac := (float64(i) + 0.5) / float64(len(words))
				wordTimes = append(wordTimes, e.Start.Seconds()+frac*span)
			}
		}
	}

	text := allText.String()

	speechDensity := 0.0
	if speechSeconds > 0 {
		speechDensity = float64(wordCount) / speechSeconds
	}
	coverage := 0.0
	if duration > 0 {
		coverage = speechSeconds / duration
	}
	wpm := 0.0
	if speechSeconds > 0 {
		wpm = float64(wordCount) / speechSeconds * 60
	}

	// Windowed words-per-minute over 10-second segments
	wordsPerWindow := stats.WindowCounts(wordTimes, pacingWindowSeconds, duration)
	wpmBySegment := make([]float64, len(wordsPerWindow))
	for i, c := range wordsPerWindow {
		wpmBySegment[i] = stats.RoundTo(float64(c)/pacingWindowSeconds*60, 1)
	}

	pauses := analyzePauses(segs)

	fillerCount := lexicon.CountTokens(text, lexicon.Filler)
	fillerRatio := 0.0
	if wordCount > 0 {
		fillerRatio = float64(fillerCount) / float64(wordCount)
	}

	// Hook phrases in the first 10 seconds, CTA phrases in the final 30%
	var hookPhrases, ctaPhrases []string
	ctaStart := duration * 0.7
	for _, seg := range segs {
		if seg.start < 10 {
			hookPhrases = append(hookPhrases, lexicon.Matches(seg.text, lexicon.Hook)...)
		}
		if seg.start >= ctaStart {
			ctaPhrases = append(ctaPhrases, lexicon.Matches(seg.text, lexicon.CTA)...)
		}
	}

	repetitions := repetitionPatterns(text)

	burstWindows := stats.AboveThresholdWindows(stats.IntsToFloats(wordsPerWindow), 1.0)

	energyWindows := make([]string, len(wpmBySegment))
	for i, w := range wpmBySegment {
		switch {
		case w >= 180:
			energyWindows[i] = "high"
		case w >= 110:
			energyWindows[i] = "medium"
		case w > 0:
			energyWindows[i] = "low"
		default:
			energyWindows[i] = "silent"
		}
	}

	gestureTimes := startTimes(tl, timeline.ModalityGesture)
	gestureSync := stats.AlignmentRatio(stressedTimes, gestureTimes, 0.3)

	return FeatureBundle{
		"word_count":           wordCount,
		"speech_density":       stats.RoundTo(speechDensity, 3),
		"speech_coverage":      stats.RoundTo(coverage, 3),
		"speech_rate_wpm":      stats.RoundTo(wpm, 1),
		"wpm_by_segment":       wpmBySegment,
		"pause_analysis":       pauses,
		"filler_word_ratio":    stats.RoundTo(fillerRatio, 4),
		"hook_phrases":         dedupe(hookPhrases),
		"cta_phrases":          dedupe(ctaPhrases),
		"repetition_patterns":  repetitions,
		"speech_bursts":        burstWindows,
		"energy_level_windows": energyWindows,
		"gesture_sync_ratio":   stats.RoundTo(gestureSync, 3),
		"data_completeness":    completeness,
		"confidence":           0.9,
	}, nil
}

// speechSegment is the in-flight view of one transcript segment.
type speechSegment struct {
	start, end float64
	text       string
}

func analyzePauses(segs []speechSegment) map[string]any {
	dramatic, strategic, breath := 0, 0, 0
	var gaps []float64
	for i := 1; i < len(segs); i++ {
		gap := segs[i].start - segs[i-1].end
		if gap <= pauseFloor {
			continue
		}
		gaps = append(gaps, stats.RoundTo(gap, 2))
		switch {
		case gap > dramaticPause:
			dramatic++
		case gap >= strategicPause:
			strategic++
		case gap >= breathPause:
			breath++
		}
	}
	return map[string]any{
		"total_pauses":     len(gaps),
		"dramatic_pauses":  dramatic,
		"strategic_pauses": strategic,
		"breath_pauses":    breath,
		"gaps":             gaps,
	}
}

// repetitionPatterns finds 2-5 word phrases repeated at least twice.
func repetitionPatterns(text string) []map[string]any {
	tokens := strings.Fields(strings.ToLower(text))
	counts := make(map[string]int)
	for n := 2; n <= 5; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			counts[phrase]++
		}
	}

	var out []map[string]any
	seen := make(map[string]bool)
	// Longer phrases first so subsumed shorter phrases are skipped
	for n := 5; n >= 2; n-- {
		for phrase, c := range counts {
			if c < 2 || len(strings.Fields(phrase)) != n {
				continue
			}
			subsumed := false
			for longer := range seen {
				if strings.Contains(longer, phrase) {
					subsumed = true
					break
				}
			}
			if subsumed {
				continue
			}
			seen[phrase] = true
			out = append(out, map[string]any{"phrase": phrase, "count": c})
			if len(out) >= 10 {
				return out
			}
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(items))
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
