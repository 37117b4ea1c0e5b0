package adapters

import (
	"strings"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// SceneAdapter normalizes shot detection output:
// {shots: [{start_time, end_time, start_frame, end_frame}]}.
type SceneAdapter struct {
	Version string
}

func (a *SceneAdapter) ModelName() string { return "scene_detection" }

func (a *SceneAdapter) Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult {
	started := time.Now()
	if raw == nil {
		return failure(a.ModelName(), a.Version, "nil analyzer output")
	}

	shotsRaw, ok := firstKey(raw, "shots", "scenes")
	if !ok {
		return failure(a.ModelName(), a.Version, "no shots key present")
	}
	shots, ok := asSlice(shotsRaw)
	if !ok {
		return failure(a.ModelName(), a.Version, "shots is not a list")
	}

	normalized := make([]any, 0, len(shots))
	for i, s := range shots {
		sm, ok := asMap(s)
		if !ok {
			continue
		}

		start, okStart := timeline.ParseTimestamp(sm["start_time"])
		if !okStart {
			if frame, okF := getInt(sm, "start_frame"); okF {
				start = timeline.FrameToSeconds(frame, meta.FPS())
				okStart = true
			}
		}
		if !okStart {
			continue
		}

		shot := map[string]any{
			"start":   start.Seconds(),
			"shot_id": i,
			"kind":    normalizeSceneKind(getString(sm, "kind", "transition")),
		}
		if end, okEnd := timeline.ParseTimestamp(sm["end_time"]); okEnd {
			shot["end"] = end.Seconds()
		} else if frame, okF := getInt(sm, "end_frame"); okF {
			shot["end"] = timeline.FrameToSeconds(frame, meta.FPS()).Seconds()
		}
		normalized = append(normalized, shot)
	}

	return success(a.ModelName(), a.Version, map[string]any{
		"shots": normalized,
	}, started)
}

func normalizeSceneKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "dissolve":
		return timeline.SceneDissolve
	case "fade", "fade_in", "fade_out":
		return timeline.SceneFade
	default:
		return timeline.SceneCut
	}
}
