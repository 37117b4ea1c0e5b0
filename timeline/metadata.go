package timeline

import (
	"fmt"
	"time"
)

// EngagementStats holds the platform counters attached to a video.
type EngagementStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Saves    int64 `json:"saves"`
}

// VideoMetadata describes the ingested video. DurationSeconds must be
// positive; OriginalFPS must be positive when present.
type VideoMetadata struct {
	VideoID         string          `json:"video_id"`
	URL             string          `json:"url"`
	DurationSeconds float64         `json:"duration_seconds"`
	OriginalFPS     float64         `json:"original_fps,omitempty"`
	FrameCount      int             `json:"frame_count,omitempty"`
	Width           int             `json:"width,omitempty"`
	Height          int             `json:"height,omitempty"`
	Description     string          `json:"description,omitempty"`
	Author          string          `json:"author,omitempty"`
	Stats           EngagementStats `json:"stats"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate checks the metadata invariants that the rest of the pipeline
// depends on.
func (m *VideoMetadata) Validate() error {
	if m.VideoID == "" {
		return fmt.Errorf("video metadata missing video_id")
	}
	if m.DurationSeconds <= 0 {
		return fmt.Errorf("video %s has non-positive duration %v", m.VideoID, m.DurationSeconds)
	}
	if m.OriginalFPS < 0 {
		return fmt.Errorf("video %s has negative fps %v", m.VideoID, m.OriginalFPS)
	}
	return nil
}

// FPS returns the original FPS, falling back to the registry default.
func (m *VideoMetadata) FPS() float64 {
	if m.OriginalFPS > 0 {
		return m.OriginalFPS
	}
	return DefaultOriginalFPS
}
