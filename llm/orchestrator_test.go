package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/config"
	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/precompute"
	"github.com/TumiLabsJN/rumiai-go/storage"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// stubCapability scripts per-call results and records invocations.
type stubCapability struct {
	calls     int
	responses map[int]PromptResult
}

func (s *stubCapability) SendPrompt(ctx context.Context, prompt string, payload any, timeout time.Duration) PromptResult {
	s.calls++
	if r, ok := s.responses[s.calls]; ok {
		return r
	}
	return PromptResult{
		Success: true,
		ResponseText: `{"CoreMetrics":{"confidence":0.5},"Dynamics":{"confidence":0.5},
			"Interactions":{"confidence":0.5},"KeyEvents":{"confidence":0.5},
			"Patterns":{"confidence":0.5},"Quality":{"confidence":0.5}}`,
	}
}

func testSetup(t *testing.T) (*config.Settings, storage.Layout, *analysis.UnifiedAnalysis, map[string]precompute.FeatureBundle) {
	t.Helper()
	dir := t.TempDir()
	settings := &config.Settings{
		PromptDelay:            time.Millisecond,
		PromptTimeouts:         map[string]int{},
		TemporalMarkersEnabled: true,
		UnifiedDir:             filepath.Join(dir, "unified_analysis"),
		TemporalDir:            filepath.Join(dir, "temporal_markers"),
		InsightsDir:            filepath.Join(dir, "insights"),
	}
	layout := storage.Layout{
		UnifiedDir:  settings.UnifiedDir,
		TemporalDir: settings.TemporalDir,
		InsightsDir: settings.InsightsDir,
	}

	meta := timeline.VideoMetadata{VideoID: "vid123", DurationSeconds: 10, OriginalFPS: 30}
	tl := timeline.New(10)
	tl.Freeze()
	ua := &analysis.UnifiedAnalysis{
		VideoID:         "vid123",
		Metadata:        meta,
		Timeline:        tl,
		TemporalMarkers: markers.Empty("vid123", 10),
		CreatedAt:       time.Now(),
	}

	bundles := make(map[string]precompute.FeatureBundle)
	for _, a := range precompute.AnalysisOrder {
		bundles[a] = precompute.FeatureBundle{"confidence": 0.9}
	}
	return settings, layout, ua, bundles
}

func TestOrchestratorRunsAllAndPersists(t *testing.T) {
	settings, layout, ua, bundles := testSetup(t)
	stub := &stubCapability{responses: map[int]PromptResult{}}
	o := NewOrchestrator(stub, settings, layout, nil)

	records := o.Run(context.Background(), ua, bundles)
	if len(records) != len(precompute.AnalysisOrder) {
		t.Fatalf("want %d records, got %d", len(precompute.AnalysisOrder), len(records))
	}
	for _, rec := range records {
		if !rec.Success {
			t.Errorf("%s failed: %s", rec.AnalysisType, rec.Error)
		}
		if len(rec.BlocksPresent) != 6 {
			t.Errorf("%s blocks present = %d", rec.AnalysisType, len(rec.BlocksPresent))
		}
		path := layout.InsightPath("vid123", rec.AnalysisType)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("result not persisted at %s: %v", path, err)
		}
		var onDisk AnalysisRecord
		if err := storage.ReadJSON(path, &onDisk); err != nil {
			t.Errorf("persisted record unreadable: %v", err)
		} else if onDisk.AnalysisType != rec.AnalysisType {
			t.Errorf("persisted record mismatched: %+v", onDisk)
		}
	}
	if stub.calls != len(precompute.AnalysisOrder) {
		t.Errorf("capability called %d times", stub.calls)
	}
}

func TestOrchestratorIsolatesFailures(t *testing.T) {
	settings, layout, ua, bundles := testSetup(t)
	stub := &stubCapability{responses: map[int]PromptResult{
		2: {Error: "timeout"},
	}}
	o := NewOrchestrator(stub, settings, layout, nil)

	records := o.Run(context.Background(), ua, bundles)
	if len(records) != len(precompute.AnalysisOrder) {
		t.Fatalf("a failed call must not abort later analyses: got %d records", len(records))
	}
	if records[1].Success || records[1].Error != "timeout" {
		t.Errorf("record 2 = %+v, want timeout failure", records[1])
	}
	if !records[2].Success {
		t.Error("analysis after the failure should still succeed")
	}
	if len(records[1].BlocksMissing) != 6 {
		t.Errorf("failed record should list all blocks missing, got %v", records[1].BlocksMissing)
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	settings, layout, ua, bundles := testSetup(t)
	stub := &stubCapability{responses: map[int]PromptResult{}}
	o := NewOrchestrator(stub, settings, layout, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records := o.Run(ctx, ua, bundles)
	if len(records) != 0 {
		t.Errorf("cancelled context must halt before the first call, got %d records", len(records))
	}
}

func TestOrchestratorMalformedResponseKeptPartial(t *testing.T) {
	settings, layout, ua, bundles := testSetup(t)
	stub := &stubCapability{responses: map[int]PromptResult{
		1: {Success: true, ResponseText: `here you go: {"CoreMetrics":{"confidence":0.9}}`},
	}}
	o := NewOrchestrator(stub, settings, layout, nil)

	records := o.Run(context.Background(), ua, bundles)
	first := records[0]
	if !first.Success {
		t.Error("partial blocks still count as success outside strict mode")
	}
	if len(first.BlocksPresent) != 1 || len(first.BlocksMissing) != 5 {
		t.Errorf("blocks = %v / %v", first.BlocksPresent, first.BlocksMissing)
	}
}

func TestRolloutDecision(t *testing.T) {
	settings, layout, ua, bundles := testSetup(t)
	stub := &stubCapability{responses: map[int]PromptResult{}}

	settings.TemporalMarkersEnabled = false
	o := NewOrchestrator(stub, settings, layout, nil)
	records := o.Run(context.Background(), ua, bundles)
	if records[0].Rollout.MarkersIncluded {
		t.Error("markers must not ship when disabled")
	}

	settings.TemporalMarkersEnabled = true
	_ = bundles
	o = NewOrchestrator(stub, settings, layout, nil)
	records = o.Run(context.Background(), ua, bundles)
	if !records[0].Rollout.MarkersIncluded {
		t.Errorf("markers should ship when enabled and within budget: %+v", records[0].Rollout)
	}
}
