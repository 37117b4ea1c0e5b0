package precompute

import (
	"testing"

	"github.com/TumiLabsJN/rumiai-go/timeline"
)

func testMeta(duration float64) timeline.VideoMetadata {
	return timeline.VideoMetadata{
		VideoID:         "vid123",
		DurationSeconds: duration,
		OriginalFPS:     30,
	}
}

func speechEntry(start, end float64, text string) timeline.Entry {
	e := timeline.Timestamp(end)
	return timeline.Entry{
		Start: timeline.Timestamp(start), End: &e,
		Modality: timeline.ModalitySpeech,
		Payload:  timeline.SpeechPayload{Text: text, Confidence: 0.9},
	}
}

func TestSpeechExtractorMinimalVideo(t *testing.T) {
	tl := timeline.New(10)
	tl.Add(speechEntry(1.0, 3.0, "hello world"))
	tl.Freeze()

	bundle, err := (&SpeechExtractor{}).Extract(tl, testMeta(10))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["word_count"].(int); got != 2 {
		t.Errorf("word_count = %v, want 2", got)
	}
	if got := bundle["speech_coverage"].(float64); got != 0.2 {
		t.Errorf("speech_coverage = %v, want 0.2", got)
	}
	if got := bundle["speech_rate_wpm"].(float64); got != 60 {
		t.Errorf("speech_rate_wpm = %v, want 60", got)
	}
}

func TestSpeechExtractorPausesAndLexicons(t *testing.T) {
	tl := timeline.New(30)
	tl.Add(speechEntry(0.0, 2.0, "wait for it, um, this is literally crazy"))
	tl.Add(speechEntry(4.5, 6.0, "so basically you know"))
	tl.Add(speechEntry(25.0, 28.0, "follow and subscribe for more"))
	tl.Freeze()

	bundle, err := (&SpeechExtractor{}).Extract(tl, testMeta(30))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	hooks := bundle["hook_phrases"].([]string)
	if len(hooks) == 0 || hooks[0] != "wait for it" {
		t.Errorf("hook phrases = %v", hooks)
	}
	ctas := bundle["cta_phrases"].([]string)
	if len(ctas) < 2 {
		t.Errorf("cta phrases = %v, want follow and subscribe", ctas)
	}
	pauses := bundle["pause_analysis"].(map[string]any)
	if pauses["dramatic_pauses"].(int) != 2 {
		t.Errorf("both >2s gaps should be dramatic: %+v", pauses)
	}
	if bundle["filler_word_ratio"].(float64) <= 0 {
		t.Error("filler words not counted")
	}
}

func TestDensityExtractor(t *testing.T) {
	tl := timeline.New(10)
	for i := 0; i < 5; i++ {
		tl.Add(timeline.Entry{
			Start:    timeline.Timestamp(float64(i) * 0.4),
			Modality: timeline.ModalityTextOverlay,
			Payload:  timeline.TextOverlayPayload{Text: "x", SizeClass: "M"},
		})
	}
	tl.Add(timeline.Entry{
		Start:    timeline.Timestamp(1.5),
		Modality: timeline.ModalitySceneChange,
		Payload:  timeline.SceneChangePayload{Kind: timeline.SceneCut, ShotID: 1},
	})
	tl.Freeze()

	bundle, err := (&DensityExtractor{}).Extract(tl, testMeta(10))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["total_elements"].(int); got != 6 {
		t.Errorf("total_elements = %v, want 6", got)
	}
	if got := bundle["density_classification"].(string); got != "medium" {
		t.Errorf("classification = %v, want medium (0.6 elem/s)", got)
	}
	structural := bundle["structural_patterns"].(map[string]bool)
	if !structural["front_loaded"] {
		t.Error("all events in first 2s should flag front_loaded")
	}
	if got := bundle["acceleration_pattern"].(string); got != "front_loaded" {
		t.Errorf("acceleration_pattern = %v", got)
	}
	if got := bundle["empty_seconds"].(int); got != 8 {
		t.Errorf("empty_seconds = %v, want 8", got)
	}
}

func TestPacingExtractor(t *testing.T) {
	tl := timeline.New(20)
	for _, cut := range []float64{2, 4, 6, 8, 10, 12, 14, 16, 18} {
		tl.Add(timeline.Entry{
			Start:    timeline.Timestamp(cut),
			Modality: timeline.ModalitySceneChange,
			Payload:  timeline.SceneChangePayload{Kind: timeline.SceneCut},
		})
	}
	tl.Freeze()

	bundle, err := (&PacingExtractor{}).Extract(tl, testMeta(20))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["total_shots"].(int); got != 10 {
		t.Errorf("total_shots = %v, want 10", got)
	}
	if got := bundle["avg_shot_duration"].(float64); got != 2.0 {
		t.Errorf("avg_shot_duration = %v, want 2.0", got)
	}
	if got := bundle["pacing_classification"].(string); got != "fast" {
		t.Errorf("classification = %v, want fast", got)
	}
	if got := bundle["rhythm_consistency"].(string); got != "consistent" {
		t.Errorf("rhythm = %v, want consistent (uniform cuts)", got)
	}
}

func TestPacingExtractorSingleShot(t *testing.T) {
	tl := timeline.New(15)
	tl.Freeze()
	bundle, err := (&PacingExtractor{}).Extract(tl, testMeta(15))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["pacing_classification"].(string); got != "single_shot" {
		t.Errorf("no cuts should classify single_shot, got %v", got)
	}
}

func TestOverlayExtractorMissingModality(t *testing.T) {
	tl := timeline.New(10)
	tl.Add(speechEntry(1, 2, "hello"))
	tl.Freeze()

	bundle, err := (&OverlayExtractor{}).Extract(tl, testMeta(10))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["avg_texts_per_second"].(float64); got != 0 {
		t.Errorf("avg_texts_per_second = %v, want 0", got)
	}
	if got := bundle["unique_text_count"].(int); got != 0 {
		t.Errorf("unique_text_count = %v, want 0", got)
	}
	if got := bundle["data_completeness"].(float64); got >= 1.0 {
		t.Errorf("data_completeness = %v, want < 1.0 without overlays", got)
	}
}

func TestEmotionExtractor(t *testing.T) {
	tl := timeline.New(20)
	valences := []float64{0.2, 0.5, 0.8, -0.3, -0.6, 0.1}
	for i, v := range valences {
		emotion := "happy"
		if v < 0 {
			emotion = "sad"
		}
		tl.Add(timeline.Entry{
			Start:    timeline.Timestamp(float64(i) * 3),
			Modality: timeline.ModalityExpression,
			Payload:  timeline.ExpressionPayload{Emotion: emotion, Valence: v, Intensity: 0.7},
		})
	}
	tl.Freeze()

	bundle, err := (&EmotionExtractor{}).Extract(tl, testMeta(20))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	seq := bundle["emotion_sequence"].([]string)
	if len(seq) != 4 {
		t.Errorf("sequence windows = %d, want 4 for 20s video", len(seq))
	}
	if seq[0] != "happy" {
		t.Errorf("first window dominant = %q, want happy", seq[0])
	}
	peaks := bundle["emotional_peaks"]
	if peaks == nil {
		t.Error("emotional_peaks missing")
	}
	if bundle["positive_ratio"].(float64)+bundle["negative_ratio"].(float64)+
		bundle["neutral_ratio"].(float64) < 0.99 {
		t.Error("ratios should sum to 1")
	}
}

func TestFramingExtractor(t *testing.T) {
	tl := timeline.New(10)
	box := &timeline.BBox{X: 0.2, Y: 0.1, W: 0.6, H: 0.7} // area 0.42 -> close
	for i := 0; i < 5; i++ {
		tl.Add(timeline.Entry{
			Start:    timeline.Timestamp(float64(i) * 2),
			Modality: timeline.ModalityPose,
			Payload:  timeline.PosePayload{HasFace: true, BBox: box, Confidence: 0.9},
		})
	}
	tl.Freeze()

	bundle, err := (&FramingExtractor{}).Extract(tl, testMeta(10))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["face_screen_time_ratio"].(float64); got != 0.5 {
		t.Errorf("face_screen_time_ratio = %v, want 0.5", got)
	}
	dist := bundle["shot_type_distribution"].(map[string]float64)
	if dist["close"] != 1.0 {
		t.Errorf("shot distribution = %v, want all close", dist)
	}
}

func TestMetadataExtractor(t *testing.T) {
	meta := testMeta(10)
	meta.Description = "Wait for it... the best coffee hack ☕ #coffee #coffeehack #fyp"
	meta.Stats = timeline.EngagementStats{
		Views: 100000, Likes: 9000, Comments: 500, Shares: 400, Saves: 100,
	}
	tl := timeline.New(10)
	tl.Freeze()

	bundle, err := (&MetadataExtractor{}).Extract(tl, meta)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := bundle["hashtag_count"].(int); got != 3 {
		t.Errorf("hashtag_count = %v, want 3", got)
	}
	if got := bundle["engagement_rate"].(float64); got != 0.1 {
		t.Errorf("engagement_rate = %v, want 0.1", got)
	}
	if got := bundle["hashtag_strategy"].(string); got != "moderate" {
		t.Errorf("hashtag_strategy = %v, want moderate", got)
	}
	if got := bundle["viral_formula"].(string); got != "hook_payoff" {
		t.Errorf("viral_formula = %v, want hook_payoff", got)
	}
}

func TestConfiguredWeightsReachExtractors(t *testing.T) {
	meta := testMeta(10)
	meta.Description = "Wait for it #tag"
	meta.Stats = timeline.EngagementStats{Views: 1000, Likes: 900}
	tl := timeline.New(10)
	tl.Add(timeline.Entry{
		Start:    timeline.Timestamp(1),
		Modality: timeline.ModalityTextOverlay,
		Payload: timeline.TextOverlayPayload{
			Text: "hello", SizeClass: "S", Position: "top-left",
			BBox: timeline.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.05},
		},
	})
	tl.Freeze()

	engagementOnly := Config{Viral: ViralWeights{Engagement: 1}}
	hookOnly := Config{Viral: ViralWeights{Hook: 1}}
	a := Run(AnalysisMetadata, tl, meta, engagementOnly)["viral_potential_score"].(float64)
	b := Run(AnalysisMetadata, tl, meta, hookOnly)["viral_potential_score"].(float64)
	if a == b {
		t.Errorf("viral weights have no effect: %v == %v", a, b)
	}

	areaOnly := Config{Readability: ReadabilityWeights{Area: 1}}
	positionOnly := Config{Readability: ReadabilityWeights{Position: 1}}
	ra := Run(AnalysisVisualOverlay, tl, meta, areaOnly)["readability_components"].(map[string]any)
	rb := Run(AnalysisVisualOverlay, tl, meta, positionOnly)["readability_components"].(map[string]any)
	if ra["overall"] == rb["overall"] {
		t.Errorf("readability weights have no effect: %v == %v", ra["overall"], rb["overall"])
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	// A nil timeline makes every extractor dereference nil; Run must still
	// return a fallback bundle.
	bundle := Run(AnalysisCreativeDensity, nil, testMeta(10), Config{})
	if fallback, ok := bundle["fallback"].(bool); !ok || !fallback {
		t.Errorf("panic did not produce fallback bundle: %v", bundle)
	}
}

func TestRunAllProducesEveryBundle(t *testing.T) {
	tl := timeline.New(10)
	tl.Add(speechEntry(1, 2, "hello"))
	tl.Freeze()

	bundles := RunAll(tl, testMeta(10), Config{})
	if len(bundles) != len(AnalysisOrder) {
		t.Fatalf("want %d bundles, got %d", len(AnalysisOrder), len(bundles))
	}
	for _, analysisType := range AnalysisOrder {
		if _, ok := bundles[analysisType]; !ok {
			t.Errorf("missing bundle for %s", analysisType)
		}
	}
}
