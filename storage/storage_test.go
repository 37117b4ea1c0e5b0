package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TumiLabsJN/rumiai-go/precompute"
)

func TestWriteJSONAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	in := map[string]any{"video_id": "vid123", "count": 3.0}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}

	var out map[string]any
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out["video_id"] != "vid123" || out["count"] != 3.0 {
		t.Errorf("round trip lost data: %v", out)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteJSONAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteJSONAtomic(path, map[string]int{"v": 1}); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSONAtomic(path, map[string]int{"v": 2}); err != nil {
		t.Fatal(err)
	}
	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatal(err)
	}
	if out["v"] != 2 {
		t.Errorf("overwrite lost: %v", out)
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{
		UnifiedDir:  "unified_analysis",
		TemporalDir: "temporal_markers",
		InsightsDir: "insights",
	}
	if got := l.UnifiedPath("vid123"); got != filepath.Join("unified_analysis", "vid123.json") {
		t.Errorf("unified path = %q", got)
	}
	at := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	if got := l.TemporalPath("vid123", at); !strings.Contains(got, "vid123_20240301_123045.json") {
		t.Errorf("temporal path = %q", got)
	}
	want := filepath.Join("insights", "vid123", "speech_analysis", "speech_analysis_result.json")
	if got := l.InsightPath("vid123", "speech_analysis"); got != want {
		t.Errorf("insight path = %q, want %q", got, want)
	}
}

func TestFlattenBundleStableAndPadded(t *testing.T) {
	bundle := precompute.FeatureBundle{
		"b_count": 3,
		"a_ratio": 0.5,
		"flag":    true,
		"name":    "ignored",
		"curve":   []float64{1, 2},
	}
	vec := FlattenBundle(bundle, 8)
	if len(vec) != 8 {
		t.Fatalf("vector len = %d, want 8", len(vec))
	}
	// Keys sort: a_ratio, b_count, curve, flag, name
	want := []float32{0.5, 3, 1, 2, 1, 0, 0, 0}
	for i, v := range want {
		if vec[i] != v {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], v)
		}
	}

	again := FlattenBundle(bundle, 8)
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatal("flatten is not deterministic")
		}
	}
}

func TestFlattenBundleTruncates(t *testing.T) {
	bundle := precompute.FeatureBundle{"curve": []float64{1, 2, 3, 4, 5, 6}}
	vec := FlattenBundle(bundle, 4)
	if len(vec) != 4 {
		t.Errorf("vector len = %d, want 4", len(vec))
	}
}
