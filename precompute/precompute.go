// Package precompute derives the seven per-analysis feature bundles from the
// unified timeline. Extractors are pure over (timeline, metadata), share the
// stats toolkit, and degrade to a flagged fallback bundle instead of failing
// the pipeline.
package precompute

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// Analysis type names, fixed across prompts, persistence paths and bundles.
const (
	AnalysisCreativeDensity  = "creative_density"
	AnalysisEmotionalJourney = "emotional_journey"
	AnalysisPersonFraming    = "person_framing"
	AnalysisScenePacing      = "scene_pacing"
	AnalysisSpeech           = "speech_analysis"
	AnalysisVisualOverlay    = "visual_overlay_analysis"
	AnalysisMetadata         = "metadata_analysis"
)

// AnalysisOrder fixes the sequence the orchestrator runs the analyses in.
var AnalysisOrder = []string{
	AnalysisCreativeDensity,
	AnalysisEmotionalJourney,
	AnalysisPersonFraming,
	AnalysisScenePacing,
	AnalysisSpeech,
	AnalysisVisualOverlay,
	AnalysisMetadata,
}

// FeatureBundle is one analysis's typed metric map. Values are
// JSON-serializable; numeric scores carry confidences in [0,1].
type FeatureBundle map[string]any

// FeatureExtractor derives one analysis's bundle.
type FeatureExtractor interface {
	AnalysisType() string
	Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error)
}

// Config carries the calibrated scoring constants the extractors blend with.
// Zero-value fields fall back to the package defaults.
type Config struct {
	Viral       ViralWeights       `json:"viral_weights"`
	Readability ReadabilityWeights `json:"readability_weights"`
}

// NewExtractor builds the extractor for an analysis type.
func NewExtractor(analysisType string, cfg Config) (FeatureExtractor, error) {
	logger := logging.WithFields(logging.Fields{"component": "precompute_factory"})
	switch analysisType {
	case AnalysisCreativeDensity:
		return &DensityExtractor{}, nil
	case AnalysisEmotionalJourney:
		return &EmotionExtractor{}, nil
	case AnalysisPersonFraming:
		return &FramingExtractor{}, nil
	case AnalysisScenePacing:
		return &PacingExtractor{}, nil
	case AnalysisSpeech:
		return &SpeechExtractor{}, nil
	case AnalysisVisualOverlay:
		return &OverlayExtractor{Weights: cfg.Readability}, nil
	case AnalysisMetadata:
		return &MetadataExtractor{Weights: cfg.Viral}, nil
	default:
		logger.Error(nil, "unknown analysis type", logging.Fields{"type": analysisType})
		return nil, fmt.Errorf("unknown analysis type %q", analysisType)
	}
}

// maxWorkers caps the bundle worker pool.
const maxWorkers = 4

// RunAll computes every analysis bundle, fanning out over a bounded worker
// pool. A failing extractor contributes its fallback bundle; RunAll itself
// never fails.
func RunAll(tl *timeline.Timeline, meta timeline.VideoMetadata, cfg Config) map[string]FeatureBundle {
	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	type job struct{ analysisType string }
	jobs := make(chan job)
	var mu sync.Mutex
	out := make(map[string]FeatureBundle, len(AnalysisOrder))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				bundle := Run(j.analysisType, tl, meta, cfg)
				mu.Lock()
				out[j.analysisType] = bundle
				mu.Unlock()
			}
		}()
	}
	for _, t := range AnalysisOrder {
		jobs <- job{analysisType: t}
	}
	close(jobs)
	wg.Wait()
	return out
}

// Run computes one analysis bundle with full failure isolation.
func Run(analysisType string, tl *timeline.Timeline, meta timeline.VideoMetadata, cfg Config) (bundle FeatureBundle) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Errorf("%v", r), "precompute extractor panicked",
				logging.Fields{"analysis": analysisType, "video_id": meta.VideoID})
			bundle = fallbackBundle(analysisType, tl, fmt.Sprintf("panic: %v", r))
		}
	}()

	extractor, err := NewExtractor(analysisType, cfg)
	if err != nil {
		return fallbackBundle(analysisType, tl, err.Error())
	}

	bundle, err = extractor.Extract(tl, meta)
	if err != nil {
		logging.Error(err, "precompute extractor failed",
			logging.Fields{"analysis": analysisType, "video_id": meta.VideoID})
		return fallbackBundle(analysisType, tl, err.Error())
	}
	return bundle
}

// fallbackBundle carries the minimal counts still derivable from the raw
// timeline when an extractor fails.
func fallbackBundle(analysisType string, tl *timeline.Timeline, reason string) FeatureBundle {
	bundle := FeatureBundle{
		"analysis_type": analysisType,
		"error":         reason,
		"fallback":      true,
		"total_events":  0,
	}
	if tl != nil {
		bundle["total_events"] = tl.Len()
		bundle["duration"] = tl.Duration()
	}
	return bundle
}

// dataCompleteness scores how much of the modality data an analysis depends
// on was actually present.
func dataCompleteness(present map[timeline.Modality]bool, needed ...timeline.Modality) float64 {
	if len(needed) == 0 {
		return 1
	}
	n := 0
	for _, m := range needed {
		if present[m] {
			n++
		}
	}
	return float64(n) / float64(len(needed))
}

// presentModalities indexes which modalities contributed at least one entry.
func presentModalities(tl *timeline.Timeline) map[timeline.Modality]bool {
	present := make(map[timeline.Modality]bool)
	for _, e := range tl.Entries() {
		present[e.Modality] = true
	}
	return present
}

// startTimes projects entry start seconds for one modality.
func startTimes(tl *timeline.Timeline, m timeline.Modality) []float64 {
	entries := tl.ByModality(m)
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Start.Seconds())
	}
	return out
}
