// Package adapters normalizes each perceptual analyzer's raw output into a
// typed MLAnalysisResult and assembles the results into the unified timeline.
// Adapters never invent data: unrecognized structure yields success=false
// with empty data, and missing fields stay absent.
package adapters

import (
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// Adapter normalizes one analyzer's raw output.
type Adapter interface {
	// ModelName is the key the result is stored under in ml_results.
	ModelName() string

	// Adapt validates and normalizes the raw output. It never returns an
	// error: malformed input produces success=false with empty data.
	Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult
}

// failure builds the canonical failed result for an adapter.
func failure(model, version, reason string) analysis.MLAnalysisResult {
	logging.Warn("adapter rejected analyzer output",
		logging.Fields{"model": model, "reason": reason})
	return analysis.MLAnalysisResult{
		ModelName:    model,
		ModelVersion: version,
		Success:      false,
		Data:         map[string]any{},
		Error:        reason,
	}
}

// success builds a successful result stamped with elapsed processing time.
func success(model, version string, data map[string]any, started time.Time) analysis.MLAnalysisResult {
	return analysis.MLAnalysisResult{
		ModelName:      model,
		ModelVersion:   version,
		Success:        true,
		Data:           data,
		ProcessingTime: time.Since(started).Seconds(),
	}
}

// firstKey returns the value of the first present key, tolerating the layout
// variants analyzers ship under different versions.
func firstKey(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func getString(m map[string]any, keys ...string) string {
	if v, ok := firstKey(m, keys...); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getFloat(m map[string]any, keys ...string) (float64, bool) {
	v, ok := firstKey(m, keys...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func getInt(m map[string]any, keys ...string) (int, bool) {
	f, ok := getFloat(m, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// getBBox normalizes the two bbox layouts in the wild: {x,y,w,h} and
// {x1,y1,x2,y2}, both in normalized or pixel coordinates. Pixel coordinates
// are scaled down by the frame dimensions; without frame dimensions a
// pixel-space box is dropped (nil).
func getBBox(m map[string]any, meta timeline.VideoMetadata) *timeline.BBox {
	raw, ok := firstKey(m, "bbox", "box", "bounding_box")
	if !ok {
		return nil
	}
	bm, ok := asMap(raw)
	if !ok {
		return nil
	}

	var box timeline.BBox
	if x, okX := getFloat(bm, "x"); okX {
		y, _ := getFloat(bm, "y")
		w, _ := getFloat(bm, "w", "width")
		h, _ := getFloat(bm, "h", "height")
		box = timeline.BBox{X: x, Y: y, W: w, H: h}
	} else if x1, okX1 := getFloat(bm, "x1"); okX1 {
		y1, _ := getFloat(bm, "y1")
		x2, _ := getFloat(bm, "x2")
		y2, _ := getFloat(bm, "y2")
		box = timeline.BBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
	} else {
		return nil
	}

	// Pixel-space boxes get normalized against the frame size
	if box.W > 1.5 || box.H > 1.5 {
		if meta.Width > 0 && meta.Height > 0 {
			box.X /= float64(meta.Width)
			box.W /= float64(meta.Width)
			box.Y /= float64(meta.Height)
			box.H /= float64(meta.Height)
		} else {
			return nil
		}
	}
	return &box
}

// entryStart resolves an event time from a per-frame record: an explicit
// timestamp wins, then a frame index converted at the original FPS.
func entryStart(m map[string]any, meta timeline.VideoMetadata) (timeline.Timestamp, bool) {
	if v, ok := firstKey(m, "timestamp", "time", "start_time", "start"); ok {
		return timeline.ParseTimestamp(v)
	}
	if frame, ok := getInt(m, "frame_index", "frame"); ok {
		return timeline.FrameToSeconds(frame, meta.FPS()), true
	}
	return 0, false
}
