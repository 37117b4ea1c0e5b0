package timeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

// Timestamp is an immutable point on the canonical time axis, in seconds.
// Every analyzer output is coerced onto this axis before fusion; frame
// numbers convert through the original video FPS, never an analyzer's
// sampling FPS.
type Timestamp float64

// Seconds returns the timestamp value in seconds.
func (t Timestamp) Seconds() float64 {
	return float64(t)
}

// Before reports whether t is strictly earlier than other.
func (t Timestamp) Before(other Timestamp) bool {
	return t < other
}

// ParseTimestamp normalizes the timestamp formats the analyzers emit:
//
//	12.5        float seconds
//	12          integer seconds
//	"12s"       suffixed seconds
//	"0-1s"      timeline range (start is used)
//	"01:30"     MM:SS
//	"01:02:30"  HH:MM:SS
//
// Unparseable or negative values return ok=false with a warning; the parser
// never returns an error.
func ParseTimestamp(v any) (Timestamp, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return fromSeconds(val)
	case float32:
		return fromSeconds(float64(val))
	case int:
		return fromSeconds(float64(val))
	case int64:
		return fromSeconds(float64(val))
	case Timestamp:
		return fromSeconds(float64(val))
	case string:
		return parseTimestampString(val)
	default:
		logging.Warn("unparseable timestamp", logging.Fields{"value": v})
		return 0, false
	}
}

func fromSeconds(sec float64) (Timestamp, bool) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		logging.Warn("unparseable timestamp", logging.Fields{"value": sec})
		return 0, false
	}
	return Timestamp(sec), true
}

func parseTimestampString(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Clock formats: MM:SS or HH:MM:SS
	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	// Range format "0-1s": the start bounds the event
	trimmed := strings.TrimSuffix(s, "s")
	if idx := strings.Index(trimmed, "-"); idx > 0 {
		trimmed = trimmed[:idx]
	}

	sec, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		logging.Warn("unparseable timestamp", logging.Fields{"value": s})
		return 0, false
	}
	return fromSeconds(sec)
}

func parseClock(s string) (Timestamp, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		logging.Warn("unparseable clock timestamp", logging.Fields{"value": s})
		return 0, false
	}

	total := 0.0
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || n < 0 {
			logging.Warn("unparseable clock timestamp", logging.Fields{"value": s})
			return 0, false
		}
		total = total*60 + n
	}
	return fromSeconds(total)
}

// FrameToSeconds converts a frame index at the given FPS to seconds.
func FrameToSeconds(frame int, fps float64) Timestamp {
	if fps <= 0 {
		fps = DefaultOriginalFPS
	}
	return Timestamp(float64(frame) / fps)
}

// SecondsToFrame converts a timestamp to the nearest frame index at the
// given FPS. Round-trips exactly with FrameToSeconds for integer frames.
func SecondsToFrame(t Timestamp, fps float64) int {
	if fps <= 0 {
		fps = DefaultOriginalFPS
	}
	return int(math.Round(float64(t) * fps))
}

// ClampToDuration clamps t into [0, duration], reporting whether clamping
// happened so the caller can count the recovery.
func ClampToDuration(t Timestamp, duration float64) (Timestamp, bool) {
	if float64(t) > duration {
		return Timestamp(duration), true
	}
	if t < 0 {
		return 0, true
	}
	return t, false
}

// FormatRange renders a time range the way the unified timeline historically
// labeled buckets, e.g. "0.0-1.0s".
func FormatRange(start, end Timestamp) string {
	return strconv.FormatFloat(float64(start), 'f', 1, 64) + "-" +
		strconv.FormatFloat(float64(end), 'f', 1, 64) + "s"
}
