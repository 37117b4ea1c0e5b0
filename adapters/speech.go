package adapters

import (
	"strings"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// SpeechAdapter normalizes speech transcription output:
// {segments: [{start, end, text, confidence, words?}], language}.
type SpeechAdapter struct {
	Version string
}

func (a *SpeechAdapter) ModelName() string { return "speech_transcription" }

func (a *SpeechAdapter) Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult {
	started := time.Now()
	if raw == nil {
		return failure(a.ModelName(), a.Version, "nil analyzer output")
	}

	segsRaw, ok := firstKey(raw, "segments", "transcription")
	if !ok {
		return failure(a.ModelName(), a.Version, "no segments key present")
	}
	segs, ok := asSlice(segsRaw)
	if !ok {
		return failure(a.ModelName(), a.Version, "segments is not a list")
	}

	language := getString(raw, "language", "lang")

	segments := make([]any, 0, len(segs))
	for _, s := range segs {
		sm, ok := asMap(s)
		if !ok {
			continue
		}
		text := strings.TrimSpace(getString(sm, "text"))
		if text == "" {
			continue
		}
		start, okStart := timeline.ParseTimestamp(sm["start"])
		if !okStart {
			continue
		}
		seg := map[string]any{
			"start": start.Seconds(),
			"text":  text,
		}
		if end, okEnd := timeline.ParseTimestamp(sm["end"]); okEnd {
			seg["end"] = end.Seconds()
		}
		if c, ok := getFloat(sm, "confidence"); ok {
			seg["confidence"] = c
		}
		if wordsRaw, ok := asSlice(sm["words"]); ok {
			words := make([]any, 0, len(wordsRaw))
			for _, w := range wordsRaw {
				wm, ok := asMap(w)
				if !ok {
					continue
				}
				word := strings.TrimSpace(getString(wm, "word", "text"))
				ws, okWS := timeline.ParseTimestamp(wm["start"])
				we, okWE := timeline.ParseTimestamp(wm["end"])
				if word == "" || !okWS || !okWE {
					continue
				}
				wc, _ := getFloat(wm, "confidence")
				words = append(words, map[string]any{
					"word":       word,
					"start":      ws.Seconds(),
					"end":        we.Seconds(),
					"confidence": wc,
				})
			}
			if len(words) > 0 {
				seg["words"] = words
			}
		}
		segments = append(segments, seg)
	}

	return success(a.ModelName(), a.Version, map[string]any{
		"segments": segments,
		"language": language,
	}, started)
}
