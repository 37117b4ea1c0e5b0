package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/precompute"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

func buildUA(t *testing.T, objectEntries int) *analysis.UnifiedAnalysis {
	t.Helper()
	meta := timeline.VideoMetadata{
		VideoID:         "vid123",
		DurationSeconds: 60,
		OriginalFPS:     30,
	}
	tl := timeline.New(60)
	for i := 0; i < objectEntries; i++ {
		tl.Add(timeline.Entry{
			Start:    timeline.Timestamp(float64(i) * 60.0 / float64(objectEntries)),
			Modality: timeline.ModalityObject,
			Payload:  timeline.ObjectPayload{Class: "person", Confidence: 0.9},
		})
	}
	tl.Add(timeline.Entry{
		Start:    timeline.Timestamp(1),
		Modality: timeline.ModalitySpeech,
		Payload:  timeline.SpeechPayload{Text: "hello"},
	})
	tl.Freeze()
	return &analysis.UnifiedAnalysis{
		VideoID:   "vid123",
		Metadata:  meta,
		Timeline:  tl,
		CreatedAt: time.Now(),
	}
}

func TestBuildProjectsModalities(t *testing.T) {
	ua := buildUA(t, 10)
	ctx := Build(precompute.AnalysisScenePacing, ua, precompute.FeatureBundle{}, nil)
	if _, ok := ctx.Timelines[string(timeline.ModalityObject)]; ok {
		t.Error("scene pacing context must not carry the object timeline")
	}
	if _, ok := ctx.Timelines[string(timeline.ModalitySceneChange)]; !ok {
		t.Error("scene pacing context must carry the scene_change timeline")
	}
}

func TestBuildDownsamplesFramingObjects(t *testing.T) {
	ua := buildUA(t, 200)
	ctx := Build(precompute.AnalysisPersonFraming, ua, precompute.FeatureBundle{}, nil)
	objects := ctx.Timelines[string(timeline.ModalityObject)]
	if len(objects) != framingObjectEntries {
		t.Errorf("object timeline = %d entries, want %d", len(objects), framingObjectEntries)
	}
	// First and last entries survive downsampling
	if objects[0]["start"].(float64) != 0 {
		t.Errorf("first entry start = %v", objects[0]["start"])
	}
}

func TestBuildCompressesOversizedContext(t *testing.T) {
	ua := buildUA(t, 3000)
	big := strings.Repeat("long description ", 100)
	ua.Metadata.Description = big

	bundle := precompute.FeatureBundle{"filler": strings.Repeat("x", 1000)}
	ctx := Build(precompute.AnalysisCreativeDensity, ua, bundle, nil)
	if ctx.SerializedSize() > MaxContextBytes {
		t.Errorf("context still over budget after compression: %d bytes at level %d",
			ctx.SerializedSize(), ctx.CompressionLevel)
	}
}

func TestTemplateCarriesBlockInstruction(t *testing.T) {
	for _, analysisType := range precompute.AnalysisOrder {
		tmpl := Template(analysisType, nil)
		for _, block := range []string{"CoreMetrics", "Dynamics", "Quality"} {
			if !strings.Contains(tmpl, block) {
				t.Errorf("%s template missing block instruction for %s", analysisType, block)
			}
		}
	}
}

func TestTemplateOverride(t *testing.T) {
	tmpl := Template(precompute.AnalysisSpeech, map[string]string{
		precompute.AnalysisSpeech: "Custom speech prompt.",
	})
	if !strings.HasPrefix(tmpl, "Custom speech prompt.") {
		t.Errorf("override ignored: %q", tmpl)
	}
	if !strings.Contains(tmpl, "CoreMetrics") {
		t.Error("override must still carry the block instruction")
	}
}
