// Package pipeline wires the full flow: analyzer outputs through adapters,
// timeline assembly, temporal markers, precompute, the LLM orchestrator and
// persistence, with progress markers on stdout and a final JSON summary.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TumiLabsJN/rumiai-go/adapters"
	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/config"
	"github.com/TumiLabsJN/rumiai-go/llm"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/precompute"
	"github.com/TumiLabsJN/rumiai-go/storage"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// AnalysisStatus is one analysis's line in the final summary.
type AnalysisStatus struct {
	AnalysisType  string `json:"analysis_type"`
	Success       bool   `json:"success"`
	BlocksPresent int    `json:"blocks_present"`
	BlocksMissing int    `json:"blocks_missing"`
	Error         string `json:"error,omitempty"`
}

// Summary is the final JSON line printed on stdout.
type Summary struct {
	RunID            string           `json:"run_id"`
	VideoID          string           `json:"video_id"`
	Success          bool             `json:"success"`
	TimelineEntries  int              `json:"timeline_entries"`
	DataCompleteness float64          `json:"data_completeness"`
	Analyses         []AnalysisStatus `json:"analyses"`
	Warnings         int              `json:"warnings"`
	Recoveries       *Tally           `json:"recoveries"`
	Elapsed          float64          `json:"elapsed_seconds"`
}

// expectedModels lists every analyzer the pipeline consumes.
var expectedModels = []string{
	"object_tracking", "speech_transcription", "human_analysis",
	"ocr", "scene_detection",
}

// Runner owns one pipeline invocation.
type Runner struct {
	settings   *config.Settings
	source     Source
	capability llm.Capability
	store      *storage.PostgresStore
	progress   *Progress
	logger     logging.Logger
}

// NewRunner wires a runner. store may be nil; progress defaults to stdout.
func NewRunner(settings *config.Settings, source Source, capability llm.Capability,
	store *storage.PostgresStore, progress *Progress) *Runner {
	if progress == nil {
		progress = NewProgress()
	}
	return &Runner{
		settings:   settings,
		source:     source,
		capability: capability,
		store:      store,
		progress:   progress,
		logger:     logging.WithFields(logging.Fields{"component": "runner"}),
	}
}

// Run executes the full pipeline for one video id and, when it reaches the
// end, prints the final summary line.
func (r *Runner) Run(ctx context.Context, videoID string) (*Summary, error) {
	started := time.Now()
	tally := &Tally{}
	summary := &Summary{
		RunID:      uuid.NewString(),
		VideoID:    videoID,
		Recoveries: tally,
	}

	layout := storage.Layout{
		UnifiedDir:  r.settings.UnifiedDir,
		TemporalDir: r.settings.TemporalDir,
		InsightsDir: r.settings.InsightsDir,
	}

	// Metadata and FPS registration
	r.progress.Step("Loading video metadata", 5)
	meta, err := r.source.Metadata(videoID)
	if err != nil {
		r.progress.Failed("Metadata", err.Error())
		return summary, err
	}
	if err := meta.Validate(); err != nil {
		r.progress.Failed("Metadata", err.Error())
		return summary, err
	}
	if r.settings.MaxVideoDuration > 0 &&
		meta.DurationSeconds > float64(r.settings.MaxVideoDuration) {
		err := fmt.Errorf("video duration %.1fs exceeds limit %ds",
			meta.DurationSeconds, r.settings.MaxVideoDuration)
		r.progress.Failed("Metadata", err.Error())
		return summary, err
	}
	timeline.Registry().Register(timeline.FPSInfo{
		VideoID:    videoID,
		Original:   meta.OriginalFPS,
		FrameCount: meta.FrameCount,
		Duration:   meta.DurationSeconds,
	})

	// Adapters
	r.progress.Step("Normalizing analyzer outputs", 20)
	results, err := r.runAdapters(videoID, meta, tally)
	if err != nil {
		r.progress.Failed("Analyzer normalization", err.Error())
		return summary, err
	}

	// Timeline assembly
	r.progress.Step("Building unified timeline", 40)
	ua, err := adapters.Assemble(meta, results)
	if err != nil {
		r.progress.Failed("Timeline assembly", err.Error())
		return summary, err
	}
	tally.AddClamped(ua.Timeline.Clamped)
	tally.AddTimestampParse(ua.Timeline.Dropped)
	summary.TimelineEntries = ua.Timeline.Len()
	summary.DataCompleteness = ua.ModalityCompleteness(expectedModels)

	// Temporal markers
	if r.settings.TemporalMarkersEnabled {
		r.progress.Step("Extracting temporal markers", 50)
		tm := markers.Extract(ua.Timeline, meta)
		// The canonical empty structure carries no snapshot id
		if tm.Metadata.SnapshotID == "" {
			tally.AddMarkerFallback(1)
		}
		ua.TemporalMarkers = tm
		if err := storage.WriteJSONAtomic(
			layout.TemporalPath(videoID, tm.Metadata.GeneratedAt), tm); err != nil {
			r.logger.Error(err, "failed to persist temporal markers")
		}
	}

	// Persist the unified analysis before any LLM work
	if err := storage.WriteJSONAtomic(layout.UnifiedPath(videoID), ua); err != nil {
		r.progress.Failed("Persistence", err.Error())
		return summary, err
	}
	r.progress.Done("Unified analysis persisted")

	// Precompute
	var bundles map[string]precompute.FeatureBundle
	if r.settings.UsePrecompute {
		r.progress.Step("Computing feature bundles", 60)
		cfg := precompute.Config{
			Viral: precompute.ViralWeights{
				Engagement: r.settings.Viral.Engagement,
				Hook:       r.settings.Viral.Hook,
				Hashtag:    r.settings.Viral.Hashtag,
			},
			Readability: precompute.ReadabilityWeights{
				Area:     r.settings.Readability.Area,
				Position: r.settings.Readability.Position,
				Contrast: r.settings.Readability.Contrast,
			},
		}
		bundles = precompute.RunAll(ua.Timeline, meta, cfg)
		for name, bundle := range bundles {
			if fallback, ok := bundle["fallback"].(bool); ok && fallback {
				tally.AddPrecomputeFail(1)
				r.logger.Warn("precompute fell back to minimal bundle",
					logging.Fields{"analysis": name})
			}
		}
	} else {
		bundles = make(map[string]precompute.FeatureBundle)
		for _, t := range precompute.AnalysisOrder {
			bundles[t] = precompute.FeatureBundle{}
		}
	}

	// LLM analyses
	r.progress.Step("Running structured analyses", 70)
	orchestrator := llm.NewOrchestrator(r.capability, r.settings, layout, r.store)
	records := orchestrator.Run(ctx, ua, bundles)

	allOK := true
	for _, rec := range records {
		status := AnalysisStatus{
			AnalysisType:  rec.AnalysisType,
			Success:       rec.Success,
			BlocksPresent: len(rec.BlocksPresent),
			BlocksMissing: len(rec.BlocksMissing),
			Error:         rec.Error,
		}
		summary.Analyses = append(summary.Analyses, status)
		if !rec.Success {
			allOK = false
			tally.AddLLMFailure(1)
		} else if len(rec.BlocksMissing) > 0 {
			tally.AddSchemaViolation(1)
		}
	}

	summary.Success = allOK && len(records) == len(precompute.AnalysisOrder)
	summary.Warnings = tally.Total()
	summary.Elapsed = time.Since(started).Seconds()

	if summary.Success {
		r.progress.Done("All analyses complete")
	}

	line, err := json.Marshal(summary)
	if err == nil {
		r.progress.Final(line)
	}
	return summary, nil
}

// runAdapters fans the raw outputs through their adapters, tallying shape
// rejections and absent modalities. In strict mode a shape rejection is
// fatal.
func (r *Runner) runAdapters(videoID string, meta timeline.VideoMetadata, tally *Tally) (map[string]analysis.MLAnalysisResult, error) {
	all := []adapters.Adapter{
		&adapters.ObjectAdapter{Version: "yolov8-track"},
		&adapters.SpeechAdapter{Version: "whisper-base"},
		&adapters.HumanAdapter{Version: "mediapipe-holistic"},
		&adapters.OCRAdapter{Version: "easyocr-1.7"},
		&adapters.SceneAdapter{Version: "pyscenedetect-0.6"},
	}

	results := make(map[string]analysis.MLAnalysisResult, len(all))
	for _, a := range all {
		raw, err := r.source.AnalyzerOutput(videoID, a.ModelName())
		if err != nil {
			r.logger.Error(err, "failed to load analyzer output",
				logging.Fields{"model": a.ModelName()})
			tally.AddInputShape(1)
			continue
		}
		if raw == nil {
			tally.AddMissingModality(1)
			continue
		}
		result := a.Adapt(raw, meta)
		if !result.Success {
			tally.AddInputShape(1)
			if r.settings.StrictMode {
				return nil, fmt.Errorf("strict mode: %s adapter rejected analyzer output: %s",
					a.ModelName(), result.Error)
			}
		}
		results[a.ModelName()] = result
	}
	return results, nil
}
