package adapters

import (
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// HumanAdapter normalizes the pose/face/gesture/expression analyzer output:
// a list of per-frame records, each possibly carrying face, pose, gesture and
// expression observations.
type HumanAdapter struct {
	Version string
}

func (a *HumanAdapter) ModelName() string { return "human_analysis" }

func (a *HumanAdapter) Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult {
	started := time.Now()
	if raw == nil {
		return failure(a.ModelName(), a.Version, "nil analyzer output")
	}

	framesRaw, ok := firstKey(raw, "frames", "frame_results", "results")
	if !ok {
		return failure(a.ModelName(), a.Version, "no frames key present")
	}
	frames, ok := asSlice(framesRaw)
	if !ok {
		return failure(a.ModelName(), a.Version, "frames is not a list")
	}

	normalized := make([]any, 0, len(frames))
	for _, f := range frames {
		fm, ok := asMap(f)
		if !ok {
			continue
		}
		start, ok := entryStart(fm, meta)
		if !ok {
			continue
		}
		nf := map[string]any{"start": start.Seconds()}

		if face, ok := asMap(fm["face"]); ok {
			nf["face"] = normalizeFace(face, meta)
		} else if present, ok := fm["face_present"].(bool); ok && present {
			nf["face"] = map[string]any{"present": true}
		}

		if expr, ok := asMap(fm["expression"]); ok {
			if e := normalizeExpression(expr); e != nil {
				nf["expression"] = e
			}
		}

		if gesture, ok := asMap(fm["gesture"]); ok {
			if g := normalizeGesture(gesture); g != nil {
				nf["gesture"] = g
			}
		}

		if pose, ok := asMap(fm["pose"]); ok {
			nf["pose"] = normalizePose(pose, meta)
		}

		normalized = append(normalized, nf)
	}

	return success(a.ModelName(), a.Version, map[string]any{
		"frames": normalized,
	}, started)
}

func normalizeFace(m map[string]any, meta timeline.VideoMetadata) map[string]any {
	out := map[string]any{"present": true}
	if box := getBBox(m, meta); box != nil {
		out["bbox"] = box
	}
	if gx, ok := getFloat(m, "gaze_x"); ok {
		gy, _ := getFloat(m, "gaze_y")
		out["gaze_x"] = gx
		out["gaze_y"] = gy
	}
	if c, ok := getFloat(m, "confidence"); ok {
		out["confidence"] = c
	}
	return out
}

func normalizeExpression(m map[string]any) map[string]any {
	emotion := getString(m, "emotion", "label")
	if emotion == "" {
		return nil
	}
	valence, _ := getFloat(m, "valence")
	intensity, _ := getFloat(m, "intensity", "score")
	return map[string]any{
		"emotion":   emotion,
		"valence":   clampRange(valence, -1, 1),
		"intensity": clampRange(intensity, 0, 1),
	}
}

func normalizeGesture(m map[string]any) map[string]any {
	label := getString(m, "label", "gesture", "name")
	if label == "" {
		return nil
	}
	conf, _ := getFloat(m, "confidence", "score")
	out := map[string]any{
		"label":      label,
		"confidence": conf,
	}
	if target := getString(m, "target"); target != "" {
		out["target"] = target
	}
	return out
}

func normalizePose(m map[string]any, meta timeline.VideoMetadata) map[string]any {
	out := map[string]any{}
	if label := getString(m, "label", "posture"); label != "" {
		out["label"] = label
	}
	if c, ok := getFloat(m, "confidence", "score"); ok {
		out["confidence"] = c
	}
	if box := getBBox(m, meta); box != nil {
		out["bbox"] = box
	}
	return out
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
