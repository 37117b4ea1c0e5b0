package storage

import (
	"fmt"
	"path/filepath"
	"time"
)

// Layout resolves the stable on-disk paths downstream consumers depend on.
type Layout struct {
	UnifiedDir  string
	TemporalDir string
	InsightsDir string
}

// UnifiedPath is unified_analysis/<video_id>.json.
func (l Layout) UnifiedPath(videoID string) string {
	return filepath.Join(l.UnifiedDir, videoID+".json")
}

// TemporalPath is temporal_markers/<video_id>_<timestamp>.json.
func (l Layout) TemporalPath(videoID string, at time.Time) string {
	return filepath.Join(l.TemporalDir,
		fmt.Sprintf("%s_%s.json", videoID, at.UTC().Format("20060102_150405")))
}

// InsightPath is insights/<video_id>/<analysis>/<analysis>_result.json.
func (l Layout) InsightPath(videoID, analysisType string) string {
	return filepath.Join(l.InsightsDir, videoID, analysisType,
		analysisType+"_result.json")
}
