package adapters

import (
	"fmt"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// ObjectAdapter normalizes object tracker output: a list of track
// annotations, each carrying a class, a confidence and per-frame
// observations. Tolerates objectAnnotations, detections and results as the
// top-level key.
type ObjectAdapter struct {
	Version string
}

func (a *ObjectAdapter) ModelName() string { return "object_tracking" }

func (a *ObjectAdapter) Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult {
	started := time.Now()
	if raw == nil {
		return failure(a.ModelName(), a.Version, "nil analyzer output")
	}

	top, ok := firstKey(raw, "objectAnnotations", "detections", "results")
	if !ok {
		return failure(a.ModelName(), a.Version, "no annotation key present")
	}
	tracks, ok := asSlice(top)
	if !ok {
		return failure(a.ModelName(), a.Version, "annotations is not a list")
	}

	annotations := make([]any, 0, len(tracks))
	for i, t := range tracks {
		tm, ok := asMap(t)
		if !ok {
			continue
		}
		class := getString(tm, "class", "category", "entity", "label")
		if class == "" {
			continue
		}
		conf, _ := getFloat(tm, "confidence", "score")
		trackID := getString(tm, "track_id", "id")
		if trackID == "" {
			trackID = fmt.Sprintf("track_%d", i)
		}

		framesRaw, ok := firstKey(tm, "frames", "observations")
		var frames []any
		if ok {
			frames, _ = asSlice(framesRaw)
		}

		normFrames := make([]any, 0, len(frames))
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
			if box := getBBox(fm, meta); box != nil {
				nf["bbox"] = box
			}
			if c, ok := getFloat(fm, "confidence", "score"); ok {
				nf["confidence"] = c
			} else {
				nf["confidence"] = conf
			}
			normFrames = append(normFrames, nf)
		}

		annotations = append(annotations, map[string]any{
			"class":      class,
			"confidence": conf,
			"track_id":   trackID,
			"frames":     normFrames,
		})
	}

	return success(a.ModelName(), a.Version, map[string]any{
		"annotations": annotations,
	}, started)
}
