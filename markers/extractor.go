package markers

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/lexicon"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// CTA window bounds: the final 15% of the video, widened to at least 3 s and
// capped at 15 s.
const (
	ctaWindowFraction = 0.85
	ctaWindowMin      = 3.0
	ctaWindowMax      = 15.0
	densityCap        = 10
	gestureSyncWindow = 0.5
)

// Extract derives temporal markers from a frozen timeline. It never returns
// nil and never panics: any failure yields the canonical empty structure for
// the video.
func Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (result *TemporalMarkers) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Errorf("%v", r), "temporal marker extraction panicked",
				logging.Fields{"video_id": meta.VideoID})
			result = Empty(meta.VideoID, meta.DurationSeconds)
		}
	}()

	m := &TemporalMarkers{
		FirstFiveSeconds: extractFirstFive(tl),
		CTAWindow:        extractCTAWindow(tl, meta.DurationSeconds),
		Metadata: Metadata{
			VideoID:     meta.VideoID,
			Duration:    meta.DurationSeconds,
			SnapshotID:  uuid.NewString(),
			GeneratedAt: time.Now().UTC(),
		},
	}

	return enforceSizeLimits(m, meta)
}

func extractFirstFive(tl *timeline.Timeline) FirstFiveSeconds {
	first := FirstFiveSeconds{
		DensityProgression: make([]int, FirstWindowLength),
		EmotionSequence:    make([]string, FirstWindowLength),
		TextMoments:        []TextMoment{},
		GestureMoments:     []GestureMoment{},
		ObjectAppearances:  []ObjectAppearance{},
	}

	for i := 0; i < FirstWindowLength; i++ {
		count := tl.CountInSecond(i)
		if count > densityCap {
			count = densityCap
		}
		first.DensityProgression[i] = count
	}

	emotionsPerSecond := make([][]string, FirstWindowLength)
	seenClasses := make(map[string]bool)

	for _, e := range tl.Range(0, FirstWindowLength) {
		switch e.Modality {
		case timeline.ModalityTextOverlay:
			overlay, ok := e.TextOverlay()
			if !ok || overlay.Text == "" {
				continue
			}
			moment := TextMoment{
				Time:       stats.RoundTo(e.Start.Seconds(), 2),
				Text:       TruncateText(overlay.Text),
				Size:       overlay.SizeClass,
				Position:   overlay.Position,
				Confidence: stats.RoundTo(confidenceOrDefault(overlay.Confidence), 2),
			}
			if overlay.Category == timeline.TextCategoryCTA ||
				lexicon.MatchAny(overlay.Text, lexicon.CTA) {
				moment.IsCTA = true
			}
			first.TextMoments = append(first.TextMoments, moment)

		case timeline.ModalityGesture:
			gesture, ok := e.Gesture()
			if !ok {
				continue
			}
			first.GestureMoments = append(first.GestureMoments, GestureMoment{
				Time:       stats.RoundTo(e.Start.Seconds(), 2),
				Gesture:    CanonicalGesture(gesture.Label),
				Target:     gesture.Target,
				Confidence: stats.RoundTo(gesture.Confidence, 2),
			})

		case timeline.ModalityObject:
			object, ok := e.Object()
			if !ok {
				continue
			}
			novel := !seenClasses[object.Class]
			seenClasses[object.Class] = true
			first.ObjectAppearances = append(first.ObjectAppearances, ObjectAppearance{
				Time:       stats.RoundTo(e.Start.Seconds(), 2),
				Class:      object.Class,
				Confidence: stats.RoundTo(object.Confidence, 2),
				Novel:      novel,
			})

		case timeline.ModalityExpression:
			expr, ok := e.Expression()
			if !ok {
				continue
			}
			idx := int(e.Start.Seconds())
			if idx >= 0 && idx < FirstWindowLength {
				emotionsPerSecond[idx] = append(emotionsPerSecond[idx], CanonicalEmotion(expr.Emotion))
			}
		}
	}

	for i, emotions := range emotionsPerSecond {
		first.EmotionSequence[i] = stats.Dominant(emotions)
	}

	rankTextMoments(first.TextMoments)
	rankGestureMoments(first.GestureMoments)
	rankObjectAppearances(first.ObjectAppearances)
	return first
}

func confidenceOrDefault(c float64) float64 {
	if c <= 0 {
		return 0.5
	}
	return c
}

var sizeRank = map[string]int{
	timeline.TextSizeXL: 3,
	timeline.TextSizeL:  2,
	timeline.TextSizeM:  1,
	timeline.TextSizeS:  0,
}

func rankTextMoments(moments []TextMoment) {
	sort.SliceStable(moments, func(i, j int) bool {
		if sizeRank[moments[i].Size] != sizeRank[moments[j].Size] {
			return sizeRank[moments[i].Size] > sizeRank[moments[j].Size]
		}
		return moments[i].Confidence > moments[j].Confidence
	})
}

func rankGestureMoments(moments []GestureMoment) {
	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].Confidence > moments[j].Confidence
	})
}

func rankObjectAppearances(apps []ObjectAppearance) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Novel != apps[j].Novel {
			return apps[i].Novel
		}
		return apps[i].Confidence > apps[j].Confidence
	})
}

func ctaBounds(duration float64) (float64, float64) {
	start := duration * ctaWindowFraction
	if duration-start < ctaWindowMin {
		start = duration - ctaWindowMin
	}
	if duration-start > ctaWindowMax {
		start = duration - ctaWindowMax
	}
	if start < 0 {
		start = 0
	}
	return start, duration
}

func extractCTAWindow(tl *timeline.Timeline, duration float64) CTAWindow {
	start, end := ctaBounds(duration)
	window := CTAWindow{
		TimeRange:      timeline.FormatRange(timeline.Timestamp(start), timeline.Timestamp(end)),
		CTAAppearances: []CTAAppearance{},
		GestureSync:    map[string]bool{},
		ObjectFocus:    []string{},
	}

	// The +1 on the range upper bound keeps events exactly at the video end
	// inside the window.
	entries := tl.Range(timeline.Timestamp(start), timeline.Timestamp(end+1))

	var ctaTimes []float64
	for _, e := range entries {
		if e.Modality != timeline.ModalityTextOverlay {
			continue
		}
		overlay, ok := e.TextOverlay()
		if !ok {
			continue
		}
		isCTA := overlay.Category == timeline.TextCategoryCTA ||
			lexicon.MatchAny(overlay.Text, lexicon.CTA)
		if !isCTA {
			continue
		}
		window.CTAAppearances = append(window.CTAAppearances, CTAAppearance{
			Time:       stats.RoundTo(e.Start.Seconds(), 2),
			Text:       TruncateText(overlay.Text),
			Type:       "text_overlay",
			Size:       overlay.SizeClass,
			Confidence: 0.9,
		})
		ctaTimes = append(ctaTimes, e.Start.Seconds())
	}

	// Speech CTAs ride along so a spoken "follow for more" still registers
	for _, e := range entries {
		if e.Modality != timeline.ModalitySpeech {
			continue
		}
		speech, ok := e.Speech()
		if !ok {
			continue
		}
		if phrase := lexicon.FirstMatch(speech.Text, lexicon.CTA); phrase != "" {
			window.CTAAppearances = append(window.CTAAppearances, CTAAppearance{
				Time:       stats.RoundTo(e.Start.Seconds(), 2),
				Text:       TruncateText(speech.Text),
				Type:       "speech",
				Confidence: stats.RoundTo(confidenceOrDefault(speech.Confidence), 2),
			})
			ctaTimes = append(ctaTimes, e.Start.Seconds())
		}
	}

	sort.SliceStable(window.CTAAppearances, func(i, j int) bool {
		return window.CTAAppearances[i].Time < window.CTAAppearances[j].Time
	})

	focusSeen := make(map[string]bool)
	for _, e := range entries {
		switch e.Modality {
		case timeline.ModalityGesture:
			gesture, ok := e.Gesture()
			if !ok {
				continue
			}
			if stats.NearAny(e.Start.Seconds(), ctaTimes, gestureSyncWindow) {
				window.GestureSync[CanonicalGesture(gesture.Label)] = true
			}
		case timeline.ModalityObject:
			object, ok := e.Object()
			if !ok || focusSeen[object.Class] {
				continue
			}
			if len(ctaTimes) == 0 || stats.NearAny(e.Start.Seconds(), ctaTimes, gestureSyncWindow) {
				focusSeen[object.Class] = true
				window.ObjectFocus = append(window.ObjectFocus, object.Class)
			}
		}
	}

	return window
}

// enforceSizeLimits truncates ranked lists until the serialized markers fit
// the soft target, halving K on overflow. Persistent overflow past the hard
// cap yields the canonical empty structure.
func enforceSizeLimits(m *TemporalMarkers, meta timeline.VideoMetadata) *TemporalMarkers {
	k := MaxEventsPerList
	for k >= 1 {
		truncateLists(m, k)
		size := m.SerializedSize()
		if size <= SoftSizeLimit {
			return m
		}
		logging.Warn("temporal markers over size target, reducing",
			logging.Fields{"video_id": meta.VideoID, "size": size, "k": k})
		k /= 2
	}

	truncateLists(m, 1)
	if size := m.SerializedSize(); size <= HardSizeLimit {
		return m
	}

	logging.Error(nil, "temporal markers exceed hard size cap, emitting empty structure",
		logging.Fields{"video_id": meta.VideoID})
	return Empty(meta.VideoID, meta.DurationSeconds)
}

func truncateLists(m *TemporalMarkers, k int) {
	if len(m.FirstFiveSeconds.TextMoments) > k {
		m.FirstFiveSeconds.TextMoments = m.FirstFiveSeconds.TextMoments[:k]
	}
	if len(m.FirstFiveSeconds.GestureMoments) > k {
		m.FirstFiveSeconds.GestureMoments = m.FirstFiveSeconds.GestureMoments[:k]
	}
	if len(m.FirstFiveSeconds.ObjectAppearances) > k {
		m.FirstFiveSeconds.ObjectAppearances = m.FirstFiveSeconds.ObjectAppearances[:k]
	}
	if len(m.CTAWindow.CTAAppearances) > k {
		m.CTAWindow.CTAAppearances = m.CTAWindow.CTAAppearances[:k]
	}
	if len(m.CTAWindow.ObjectFocus) > k {
		m.CTAWindow.ObjectFocus = m.CTAWindow.ObjectFocus[:k]
	}
}
