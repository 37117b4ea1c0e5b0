package markers

import "strings"

// Analyzer-specific labels collapse onto small canonical vocabularies before
// ranking, so the LLM sees stable terms regardless of which model version
// produced the observation.

var gestureVocab = map[string]string{
	"pointing": "pointing", "pointing_up": "pointing", "pointing_down": "pointing",
	"finger_point": "pointing", "finger_point_up": "pointing",
	"finger_point_down": "pointing", "point": "pointing",

	"wave": "wave", "hand_wave": "wave", "waving": "wave", "wave_hand": "wave",

	"approval": "approval", "thumbs_up": "approval", "thumb_up": "approval",
	"ok_sign": "approval", "okay": "approval",

	"peace_sign": "peace", "peace": "peace", "victory": "peace", "v_sign": "peace",

	"open_palm": "open_hand", "open_hand": "open_hand", "stop_sign": "open_hand",
	"high_five": "open_hand",

	"clapping": "clap", "clap": "clap", "applause": "clap",
	"hands_up": "hands_up",

	"fist": "fist", "fist_bump": "fist",
	"heart": "heart", "heart_hands": "heart",
	"crossed_arms": "crossed_arms", "arms_crossed": "crossed_arms",
}

var emotionVocab = map[string]string{
	"happy": "happy", "happiness": "happy", "joy": "happy", "joyful": "happy",
	"smile": "happy", "smiling": "happy",

	"surprise": "surprise", "surprised": "surprise", "shock": "surprise",
	"shocked": "surprise", "amazed": "surprise",

	"sad": "sad", "sadness": "sad", "unhappy": "sad",

	"anger": "anger", "angry": "anger", "mad": "anger",

	"fear": "fear", "afraid": "fear", "scared": "fear",

	"disgust": "disgust", "disgusted": "disgust",

	"neutral": "neutral", "calm": "neutral",

	"curious": "curious", "curiosity": "curious", "interested": "curious",
}

// CanonicalGesture maps a raw gesture label onto the standard vocabulary.
// Unknown labels collapse to "unknown".
func CanonicalGesture(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := gestureVocab[key]; ok {
		return canonical
	}
	if key == "" {
		return "unknown"
	}
	return "unknown"
}

// CanonicalEmotion maps a raw emotion label onto the standard vocabulary.
// Empty and unrecognized labels collapse to "unknown".
func CanonicalEmotion(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := emotionVocab[key]; ok {
		return canonical
	}
	return "unknown"
}

// TruncateText bounds marker text to MaxTextLength runes.
func TruncateText(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= MaxTextLength {
		return string(runes)
	}
	return string(runes[:MaxTextLength-1]) + "…"
}
