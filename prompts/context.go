package prompts

import (
	"encoding/json"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/precompute"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// MaxContextBytes bounds the compact-JSON context payload.
const MaxContextBytes = 200 * 1024

// Compression tiers applied, in order, when the context exceeds the budget.
const (
	CompressionNone = iota
	CompressionDropVerbose
	CompressionCapEntries
	CompressionSummaryOnly
)

const maxEntriesPerModality = 50
const framingObjectEntries = 30

// Context is the structured payload accompanying each prompt.
type Context struct {
	AnalysisType       string                      `json:"analysis_type"`
	PrecomputedMetrics precompute.FeatureBundle    `json:"precomputed_metrics"`
	Timelines          map[string][]map[string]any `json:"timelines"`
	Metadata           timeline.VideoMetadata      `json:"metadata"`
	Duration           float64                     `json:"duration"`
	TemporalMarkers    *markers.TemporalMarkers    `json:"temporal_markers,omitempty"`
	CompressionLevel   int                         `json:"compression_level"`
}

// analysisModalities projects the timeline to what each analysis needs.
var analysisModalities = map[string][]timeline.Modality{
	precompute.AnalysisCreativeDensity: {
		timeline.ModalityTextOverlay, timeline.ModalitySticker,
		timeline.ModalitySceneChange, timeline.ModalityObject,
	},
	precompute.AnalysisEmotionalJourney: {
		timeline.ModalityExpression, timeline.ModalityGesture,
	},
	precompute.AnalysisPersonFraming: {
		timeline.ModalityPose, timeline.ModalityObject,
	},
	precompute.AnalysisScenePacing: {
		timeline.ModalitySceneChange,
	},
	precompute.AnalysisSpeech: {
		timeline.ModalitySpeech, timeline.ModalityGesture,
	},
	precompute.AnalysisVisualOverlay: {
		timeline.ModalityTextOverlay, timeline.ModalitySticker, timeline.ModalitySpeech,
	},
	precompute.AnalysisMetadata: {},
}

// Build assembles the context for one analysis, applying compression tiers
// until the payload fits the budget. Temporal markers ride along only when
// provided (the rollout decision happens in the orchestrator).
func Build(analysisType string, ua *analysis.UnifiedAnalysis,
	bundle precompute.FeatureBundle, tm *markers.TemporalMarkers) *Context {

	ctx := &Context{
		AnalysisType:       analysisType,
		PrecomputedMetrics: bundle,
		Timelines:          projectTimelines(analysisType, ua),
		Metadata:           ua.Metadata,
		Duration:           ua.Metadata.DurationSeconds,
		TemporalMarkers:    tm,
		CompressionLevel:   CompressionNone,
	}

	for level := CompressionNone; level <= CompressionSummaryOnly; level++ {
		if level > CompressionNone {
			compress(ctx, level)
			ctx.CompressionLevel = level
		}
		if ctx.SerializedSize() <= MaxContextBytes {
			break
		}
		logging.Warn("prompt context over budget, compressing",
			logging.Fields{"analysis": analysisType, "level": level + 1})
	}
	return ctx
}

// SerializedSize returns the compact-JSON byte size of the context.
func (c *Context) SerializedSize() int {
	b, err := json.Marshal(c)
	if err != nil {
		return 0
	}
	return len(b)
}

func projectTimelines(analysisType string, ua *analysis.UnifiedAnalysis) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for _, m := range analysisModalities[analysisType] {
		entries := ua.Timeline.ByModality(m)

		// Person framing gets a downsampled object timeline: the shot-type
		// signal survives 30 evenly spaced samples.
		if analysisType == precompute.AnalysisPersonFraming &&
			m == timeline.ModalityObject && len(entries) > framingObjectEntries {
			entries = downsample(entries, framingObjectEntries)
		}

		serialized := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			serialized = append(serialized, serializeEntry(e))
		}
		out[string(m)] = serialized
	}
	return out
}

func downsample(entries []timeline.Entry, target int) []timeline.Entry {
	if len(entries) <= target {
		return entries
	}
	out := make([]timeline.Entry, 0, target)
	step := float64(len(entries)-1) / float64(target-1)
	for i := 0; i < target; i++ {
		out = append(out, entries[int(float64(i)*step)])
	}
	return out
}

func serializeEntry(e timeline.Entry) map[string]any {
	m := map[string]any{
		"start":    e.Start.Seconds(),
		"modality": string(e.Modality),
		"payload":  e.Payload,
	}
	if e.End != nil {
		m["end"] = e.End.Seconds()
	}
	return m
}

func compress(ctx *Context, level int) {
	switch level {
	case CompressionDropVerbose:
		ctx.Metadata.Description = truncate(ctx.Metadata.Description, 200)
		for _, entries := range ctx.Timelines {
			for _, e := range entries {
				if speech, ok := e["payload"].(timeline.SpeechPayload); ok {
					speech.Words = nil
					e["payload"] = speech
				}
			}
		}
	case CompressionCapEntries:
		for name, entries := range ctx.Timelines {
			if len(entries) > maxEntriesPerModality {
				ctx.Timelines[name] = entries[:maxEntriesPerModality]
			}
		}
	case CompressionSummaryOnly:
		summary := make(map[string][]map[string]any, len(ctx.Timelines))
		for name, entries := range ctx.Timelines {
			summary[name] = []map[string]any{{"entry_count": len(entries)}}
		}
		ctx.Timelines = summary
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
