package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/storage"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// Source supplies the inputs the core consumes: video metadata plus raw
// analyzer outputs keyed by model name. Acquisition and the ML models
// themselves are external collaborators behind this interface.
type Source interface {
	Metadata(videoID string) (timeline.VideoMetadata, error)
	AnalyzerOutput(videoID, modelName string) (map[string]any, error)
}

// analyzerFiles maps model names to their on-disk output files under
// ml_outputs/<video_id>/.
var analyzerFiles = map[string]string{
	"object_tracking":      "object_tracking.json",
	"speech_transcription": "speech_transcription.json",
	"human_analysis":       "human_analysis.json",
	"ocr":                  "ocr.json",
	"scene_detection":      "scene_detection.json",
}

// DiskSource reads pre-populated analyzer outputs from the expected layout:
// ml_outputs/<video_id>/metadata.json plus one file per analyzer.
type DiskSource struct {
	Root string
}

// NewDiskSource roots the source at dir (default "ml_outputs").
func NewDiskSource(dir string) *DiskSource {
	if dir == "" {
		dir = "ml_outputs"
	}
	return &DiskSource{Root: dir}
}

func (d *DiskSource) Metadata(videoID string) (timeline.VideoMetadata, error) {
	var meta timeline.VideoMetadata
	path := filepath.Join(d.Root, videoID, "metadata.json")
	if err := storage.ReadJSON(path, &meta); err != nil {
		return meta, fmt.Errorf("load metadata for %s: %w", videoID, err)
	}
	if meta.VideoID == "" {
		meta.VideoID = videoID
	}
	return meta, nil
}

func (d *DiskSource) AnalyzerOutput(videoID, modelName string) (map[string]any, error) {
	file, ok := analyzerFiles[modelName]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelName)
	}
	path := filepath.Join(d.Root, videoID, file)
	var out map[string]any
	if err := storage.ReadJSON(path, &out); err != nil {
		if os.IsNotExist(err) {
			logging.Warn("analyzer output missing",
				logging.Fields{"model": modelName, "video_id": videoID})
			return nil, nil
		}
		return nil, fmt.Errorf("load %s output: %w", modelName, err)
	}
	return out, nil
}

// VideoIDFromURL extracts the numeric TikTok video id from a share URL.
// Falls back to the last path segment.
func VideoIDFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if idx := strings.LastIndex(trimmed, "/video/"); idx >= 0 {
		return trimmed[idx+len("/video/"):]
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
