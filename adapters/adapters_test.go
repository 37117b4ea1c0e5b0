package adapters

import (
	"testing"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

func testMeta() timeline.VideoMetadata {
	return timeline.VideoMetadata{
		VideoID:         "vid123",
		DurationSeconds: 10,
		OriginalFPS:     30,
		Width:           1080,
		Height:          1920,
	}
}

func TestObjectAdapterLayoutVariants(t *testing.T) {
	track := map[string]any{
		"class":      "person",
		"confidence": 0.9,
		"frames": []any{
			map[string]any{"timestamp": 1.0, "bbox": map[string]any{"x": 0.1, "y": 0.1, "w": 0.5, "h": 0.5}},
		},
	}
	for _, key := range []string{"objectAnnotations", "detections", "results"} {
		raw := map[string]any{key: []any{track}}
		result := (&ObjectAdapter{}).Adapt(raw, testMeta())
		if !result.Success {
			t.Errorf("key %q: adapter rejected valid layout: %s", key, result.Error)
		}
		annotations, _ := result.Data["annotations"].([]any)
		if len(annotations) != 1 {
			t.Errorf("key %q: want 1 annotation, got %d", key, len(annotations))
		}
	}
}

func TestObjectAdapterRejectsUnknownShape(t *testing.T) {
	result := (&ObjectAdapter{}).Adapt(map[string]any{"nonsense": 42}, testMeta())
	if result.Success {
		t.Fatal("adapter accepted unrecognized structure")
	}
	if result.Data == nil {
		t.Error("failed result must still carry a valid data object")
	}
}

func TestObjectAdapterFrameIndexConversion(t *testing.T) {
	raw := map[string]any{
		"detections": []any{map[string]any{
			"class":  "dog",
			"frames": []any{map[string]any{"frame_index": 60}},
		}},
	}
	result := (&ObjectAdapter{}).Adapt(raw, testMeta())
	annotations := result.Data["annotations"].([]any)
	frames := annotations[0].(map[string]any)["frames"].([]any)
	start := frames[0].(map[string]any)["start"].(float64)
	if start != 2.0 {
		t.Errorf("frame 60 at 30fps = %v seconds, want 2.0", start)
	}
}

func TestSpeechAdapter(t *testing.T) {
	raw := map[string]any{
		"language": "en",
		"segments": []any{
			map[string]any{"start": 1.0, "end": 3.0, "text": "hello world", "confidence": 0.95},
			map[string]any{"start": "bad", "text": "dropped"},
			map[string]any{"start": 4.0, "text": "   "},
		},
	}
	result := (&SpeechAdapter{}).Adapt(raw, testMeta())
	if !result.Success {
		t.Fatalf("adapter failed: %s", result.Error)
	}
	segments := result.Data["segments"].([]any)
	if len(segments) != 1 {
		t.Fatalf("want 1 valid segment, got %d", len(segments))
	}
	if result.Data["language"] != "en" {
		t.Errorf("language lost: %v", result.Data["language"])
	}
}

func TestSceneAdapterFrameFallback(t *testing.T) {
	raw := map[string]any{
		"shots": []any{
			map[string]any{"start_frame": 0, "end_frame": 90},
			map[string]any{"start_time": 3.0, "end_time": 6.0},
		},
	}
	result := (&SceneAdapter{}).Adapt(raw, testMeta())
	shots := result.Data["shots"].([]any)
	if len(shots) != 2 {
		t.Fatalf("want 2 shots, got %d", len(shots))
	}
	second := shots[1].(map[string]any)
	if second["start"].(float64) != 3.0 {
		t.Errorf("explicit start_time not honored: %v", second["start"])
	}
}

func TestOCRAdapterDerivesFields(t *testing.T) {
	raw := map[string]any{
		"frames": []any{
			map[string]any{
				"timestamp": 0.5,
				"text_elements": []any{
					map[string]any{
						"text": "FOLLOW ME",
						"bbox": map[string]any{"x": 0.2, "y": 0.8, "w": 0.6, "h": 0.1},
					},
				},
			},
		},
	}
	result := (&OCRAdapter{}).Adapt(raw, testMeta())
	frames := result.Data["frames"].([]any)
	elem := frames[0].(map[string]any)["text_elements"].([]any)[0].(map[string]any)
	if elem["category"] != timeline.TextCategoryCTA {
		t.Errorf("CTA text not classified: %v", elem["category"])
	}
	if elem["position"] != "bottom-center" {
		t.Errorf("position = %v, want bottom-center", elem["position"])
	}
	if elem["size_class"] == "" {
		t.Error("size class not derived")
	}
}

func TestAssembleMixedTimestampFormats(t *testing.T) {
	meta := testMeta()
	results := map[string]analysis.MLAnalysisResult{
		"ocr": {
			ModelName: "ocr", Success: true,
			Data: map[string]any{
				"frames": []any{
					map[string]any{"start": "0-1s", "text_elements": []any{textElem("a")}},
					map[string]any{"start": "2s", "text_elements": []any{textElem("b")}},
					map[string]any{"start": 2.5, "text_elements": []any{textElem("c")}},
					map[string]any{"start": "0:03", "text_elements": []any{textElem("d")}},
					map[string]any{"start": "bad", "text_elements": []any{textElem("e")}},
				},
			},
		},
	}
	ua, err := Assemble(meta, results)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if ua.Timeline.Len() != 4 {
		t.Fatalf("want 4 entries (fifth dropped), got %d", ua.Timeline.Len())
	}
	want := []float64{0, 2, 2.5, 3}
	for i, e := range ua.Timeline.Entries() {
		if e.Start.Seconds() != want[i] {
			t.Errorf("entry %d start = %v, want %v", i, e.Start.Seconds(), want[i])
		}
	}
}

func textElem(text string) map[string]any {
	return map[string]any{
		"text": text, "size_class": "M", "position": "middle-center",
		"category": "other", "confidence": 0.8,
	}
}

func TestAssembleIsolatesFailedModality(t *testing.T) {
	meta := testMeta()
	results := map[string]analysis.MLAnalysisResult{
		"scene_detection": {
			ModelName: "scene_detection", Success: true,
			Data: map[string]any{"shots": "not-a-list"},
		},
		"speech_transcription": {
			ModelName: "speech_transcription", Success: true,
			Data: map[string]any{
				"segments": []any{map[string]any{"start": 1.0, "text": "ok"}},
			},
		},
	}
	ua, err := Assemble(meta, results)
	if err != nil {
		t.Fatalf("Assemble must not fail on a bad modality: %v", err)
	}
	if ua.Timeline.Len() != 1 {
		t.Errorf("want 1 speech entry despite broken scenes, got %d", ua.Timeline.Len())
	}
}

func TestModalityCompleteness(t *testing.T) {
	ua := &analysis.UnifiedAnalysis{
		MLResults: map[string]analysis.MLAnalysisResult{
			"ocr":                  {Success: true},
			"speech_transcription": {Success: false},
		},
	}
	got := ua.ModalityCompleteness([]string{"ocr", "speech_transcription", "scene_detection"})
	if got < 0.33 || got > 0.34 {
		t.Errorf("completeness = %v, want 1/3", got)
	}
}
