// Package markers derives the bounded temporal-marker summary used to prime
// the LLM: structured events from the first five seconds and from the CTA
// window at the tail of the video, held under a hard serialized-size cap.
package markers

import (
	"encoding/json"
	"time"
)

// Size and cardinality limits. The hard cap leaves headroom under the 200 KB
// downstream payload limit.
const (
	MaxTextLength     = 50
	MaxEventsPerList  = 8
	SoftSizeLimit     = 100 * 1024
	HardSizeLimit     = 180 * 1024
	FirstWindowLength = 5
)

// TextMoment is one ranked on-screen text event from the first five seconds.
type TextMoment struct {
	Time       float64 `json:"time"`
	Text       string  `json:"text"`
	Size       string  `json:"size"`
	Position   string  `json:"position"`
	Confidence float64 `json:"confidence"`
	IsCTA      bool    `json:"is_cta,omitempty"`
}

// GestureMoment is one ranked gesture event from the first five seconds.
type GestureMoment struct {
	Time       float64 `json:"time"`
	Gesture    string  `json:"gesture"`
	Target     string  `json:"target,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ObjectAppearance is one ranked object event from the first five seconds.
type ObjectAppearance struct {
	Time       float64 `json:"time"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Novel      bool    `json:"novel,omitempty"`
}

// CTAAppearance is one call-to-action signal inside the CTA window.
type CTAAppearance struct {
	Time       float64 `json:"time"`
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Size       string  `json:"size,omitempty"`
	Confidence float64 `json:"confidence"`
}

// FirstFiveSeconds summarizes the opening of the video.
type FirstFiveSeconds struct {
	DensityProgression []int              `json:"density_progression"`
	TextMoments        []TextMoment       `json:"text_moments"`
	EmotionSequence    []string           `json:"emotion_sequence"`
	GestureMoments     []GestureMoment    `json:"gesture_moments"`
	ObjectAppearances  []ObjectAppearance `json:"object_appearances"`
}

// CTAWindow summarizes call-to-action signals in the final window of the
// video. ObjectFocus lists the classes on screen while CTAs show; the legacy
// marker shape without it is accepted as a subset.
type CTAWindow struct {
	TimeRange      string          `json:"time_range"`
	CTAAppearances []CTAAppearance `json:"cta_appearances"`
	GestureSync    map[string]bool `json:"gesture_sync"`
	ObjectFocus    []string        `json:"object_focus"`
}

// Metadata identifies the marker snapshot.
type Metadata struct {
	VideoID     string    `json:"video_id"`
	Duration    float64   `json:"duration"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TemporalMarkers is the bounded marker structure handed to the prompt
// builder. Serialized size never exceeds HardSizeLimit.
type TemporalMarkers struct {
	FirstFiveSeconds FirstFiveSeconds `json:"first_5_seconds"`
	CTAWindow        CTAWindow        `json:"cta_window"`
	Metadata         Metadata         `json:"metadata"`
}

// SerializedSize returns the compact-JSON byte size of the markers.
func (t *TemporalMarkers) SerializedSize() int {
	b, err := json.Marshal(t)
	if err != nil {
		return 0
	}
	return len(b)
}

// Empty returns the canonical empty-but-valid marker structure for a video.
// Emitted whenever extraction fails or the size cap cannot be met.
func Empty(videoID string, duration float64) *TemporalMarkers {
	return &TemporalMarkers{
		FirstFiveSeconds: FirstFiveSeconds{
			DensityProgression: make([]int, FirstWindowLength),
			TextMoments:        []TextMoment{},
			EmotionSequence:    make([]string, FirstWindowLength),
			GestureMoments:     []GestureMoment{},
			ObjectAppearances:  []ObjectAppearance{},
		},
		CTAWindow: CTAWindow{
			TimeRange:      "",
			CTAAppearances: []CTAAppearance{},
			GestureSync:    map[string]bool{},
			ObjectFocus:    []string{},
		},
		Metadata: Metadata{
			VideoID:     videoID,
			Duration:    duration,
			GeneratedAt: time.Now().UTC(),
		},
	}
}
