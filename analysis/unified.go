// Package analysis defines the fused artifact the pipeline produces from the
// individual analyzer outputs: one unified timeline plus the raw per-model
// results and the temporal markers derived from them.
package analysis

import (
	"time"

	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// MLAnalysisResult is the normalized output of one analyzer adapter.
// When Success is false, Data may be empty but is always a valid map.
type MLAnalysisResult struct {
	ModelName      string         `json:"model_name"`
	ModelVersion   string         `json:"model_version"`
	Success        bool           `json:"success"`
	Data           map[string]any `json:"data"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime float64        `json:"processing_time"`
}

// UnifiedAnalysis owns the fused representation of one video. It is built
// once by the assembler, extended with temporal markers, then treated as
// read-only by the precompute and prompt layers.
type UnifiedAnalysis struct {
	VideoID         string                      `json:"video_id"`
	Metadata        timeline.VideoMetadata      `json:"metadata"`
	Timeline        *timeline.Timeline          `json:"timeline"`
	MLResults       map[string]MLAnalysisResult `json:"ml_results"`
	TemporalMarkers *markers.TemporalMarkers    `json:"temporal_markers,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

// ModalityCompleteness reports which analyzers succeeded, as the fraction of
// expected models with usable output. Feeds data_completeness in the final
// summary.
func (u *UnifiedAnalysis) ModalityCompleteness(expected []string) float64 {
	if len(expected) == 0 {
		return 1.0
	}
	ok := 0
	for _, name := range expected {
		if r, found := u.MLResults[name]; found && r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(expected))
}
