package timeline

import (
	"sync"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

// Conservative defaults used when a video was never registered. Four FPS
// contexts exist per video (original, frame-extraction, model-internal
// sampling, 1 Hz output aggregation); only the original FPS is ever used
// for frame↔second conversion.
const (
	DefaultOriginalFPS   = 30.0
	DefaultExtractionFPS = 1.0
)

// FPSInfo carries the per-video frame-rate contexts. Extraction and model
// sampling rates are metadata only.
type FPSInfo struct {
	VideoID       string  `json:"video_id"`
	Original      float64 `json:"original_fps"`
	Extraction    float64 `json:"extraction_fps"`
	ModelSampling float64 `json:"model_sampling_fps,omitempty"`
	FrameCount    int     `json:"frame_count"`
	Duration      float64 `json:"duration"`
}

// FPSRegistry is process-wide, write-once-per-video state. Registration after
// the first write for a video id is ignored.
type FPSRegistry struct {
	mu      sync.RWMutex
	entries map[string]FPSInfo
}

var globalRegistry = &FPSRegistry{entries: make(map[string]FPSInfo)}

// Registry returns the process-wide FPS registry.
func Registry() *FPSRegistry {
	return globalRegistry
}

// Register records the FPS contexts for a video. The first write wins.
func (r *FPSRegistry) Register(info FPSInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[info.VideoID]; exists {
		return
	}
	if info.Original <= 0 {
		logging.Warn("registering video with invalid original fps, using default",
			logging.Fields{"video_id": info.VideoID, "fps": info.Original})
		info.Original = DefaultOriginalFPS
	}
	if info.Extraction <= 0 {
		info.Extraction = DefaultExtractionFPS
	}
	r.entries[info.VideoID] = info
}

// Lookup returns the FPS contexts for a video. A missing registration yields
// conservative defaults and a logged warning.
func (r *FPSRegistry) Lookup(videoID string) FPSInfo {
	r.mu.RLock()
	info, ok := r.entries[videoID]
	r.mu.RUnlock()

	if !ok {
		logging.Warn("video not in fps registry, using defaults",
			logging.Fields{"video_id": videoID})
		return FPSInfo{
			VideoID:    videoID,
			Original:   DefaultOriginalFPS,
			Extraction: DefaultExtractionFPS,
		}
	}
	return info
}

// OriginalFPS is a convenience accessor for the only FPS that conversions
// may use.
func (r *FPSRegistry) OriginalFPS(videoID string) float64 {
	return r.Lookup(videoID).Original
}
