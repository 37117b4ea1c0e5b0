package llm

import (
	"context"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/config"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/markers"
	"github.com/TumiLabsJN/rumiai-go/precompute"
	"github.com/TumiLabsJN/rumiai-go/prompts"
	"github.com/TumiLabsJN/rumiai-go/storage"
	"github.com/TumiLabsJN/rumiai-go/validate"
)

// RolloutDecision records whether temporal markers were included in one
// call's context, and why.
type RolloutDecision struct {
	MarkersIncluded bool   `json:"markers_included"`
	Reason          string `json:"reason"`
}

// AnalysisRecord is the persisted per-analysis result.
type AnalysisRecord struct {
	VideoID       string          `json:"video_id"`
	AnalysisType  string          `json:"analysis_type"`
	Success       bool            `json:"success"`
	BlocksPresent []string        `json:"blocks_present"`
	BlocksMissing []string        `json:"blocks_missing"`
	Data          map[string]any  `json:"data"`
	Usage         *Usage          `json:"usage,omitempty"`
	Error         string          `json:"error,omitempty"`
	Rollout       RolloutDecision `json:"rollout_decision"`
	Compression   int             `json:"compression_level"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// Orchestrator drives the seven analyses in fixed order with inter-call
// spacing, per-call timeouts and full per-call isolation.
type Orchestrator struct {
	capability Capability
	settings   *config.Settings
	layout     storage.Layout
	store      *storage.PostgresStore
	overrides  map[string]string
	logger     logging.Logger
}

// NewOrchestrator wires the orchestrator. store may be nil.
func NewOrchestrator(capability Capability, settings *config.Settings, layout storage.Layout, store *storage.PostgresStore) *Orchestrator {
	return &Orchestrator{
		capability: capability,
		settings:   settings,
		layout:     layout,
		store:      store,
		overrides:  settings.PromptOverrides(),
		logger:     logging.WithFields(logging.Fields{"component": "orchestrator"}),
	}
}

// Run executes every analysis, persisting each record before the next call
// starts. A failing analysis never aborts the rest; cancellation between
// analyses halts further calls and keeps persisted results.
func (o *Orchestrator) Run(ctx context.Context, ua *analysis.UnifiedAnalysis,
	bundles map[string]precompute.FeatureBundle) []AnalysisRecord {

	records := make([]AnalysisRecord, 0, len(precompute.AnalysisOrder))
	for i, analysisType := range precompute.AnalysisOrder {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("orchestration cancelled",
				logging.Fields{"completed": len(records)})
			break
		}

		record := o.runOne(ctx, analysisType, ua, bundles[analysisType])
		records = append(records, record)

		if err := storage.WriteJSONAtomic(
			o.layout.InsightPath(ua.VideoID, analysisType), record); err != nil {
			// PersistenceFailure is fatal for this analysis's result only
			o.logger.Error(err, "failed to persist analysis result",
				logging.Fields{"analysis": analysisType})
			records[len(records)-1].Error = "persist: " + err.Error()
			records[len(records)-1].Success = false
		}

		if o.store != nil {
			if err := o.store.StoreBundle(ctx, ua.VideoID, analysisType,
				bundles[analysisType]); err != nil {
				o.logger.Warn("feature vector store failed",
					logging.Fields{"analysis": analysisType, "error": err.Error()})
			}
		}

		if i < len(precompute.AnalysisOrder)-1 {
			select {
			case <-time.After(o.settings.PromptDelay):
			case <-ctx.Done():
			}
		}
	}
	return records
}

func (o *Orchestrator) runOne(ctx context.Context, analysisType string,
	ua *analysis.UnifiedAnalysis, bundle precompute.FeatureBundle) AnalysisRecord {

	record := AnalysisRecord{
		VideoID:      ua.VideoID,
		AnalysisType: analysisType,
		GeneratedAt:  time.Now().UTC(),
	}

	tm, rollout := o.decideRollout(ua)
	record.Rollout = rollout

	promptCtx := prompts.Build(analysisType, ua, bundle, tm)
	record.Compression = promptCtx.CompressionLevel

	template := prompts.Template(analysisType, o.overrides)
	timeout := o.settings.Timeout(analysisType)

	o.logger.Info("running analysis", logging.Fields{
		"analysis": analysisType,
		"timeout":  timeout.Seconds(),
	})

	result := o.capability.SendPrompt(ctx, template, promptCtx, timeout)
	record.Usage = result.Usage
	if !result.Success {
		record.Error = result.Error
		record.BlocksPresent = []string{}
		record.BlocksMissing = append([]string{}, validate.CanonicalBlocks...)
		record.Data = map[string]any{}
		o.logger.Error(nil, "analysis call failed", logging.Fields{
			"analysis": analysisType, "error": result.Error,
		})
		return record
	}

	validated := validate.Validate(result.ResponseText)
	record.Success = true
	record.BlocksPresent = validated.BlocksPresent
	record.BlocksMissing = validated.BlocksMissing
	record.Data = validated.Data
	if validated.ParseError != "" {
		record.Error = validated.ParseError
		// Strict mode elevates schema violations to failures
		record.Success = !o.settings.StrictMode
	}
	return record
}

// decideRollout picks whether temporal markers ship with this call's
// context.
func (o *Orchestrator) decideRollout(ua *analysis.UnifiedAnalysis) (*markers.TemporalMarkers, RolloutDecision) {
	if !o.settings.TemporalMarkersEnabled {
		return nil, RolloutDecision{Reason: "disabled by settings"}
	}
	if ua.TemporalMarkers == nil {
		return nil, RolloutDecision{Reason: "extraction produced no markers"}
	}
	if ua.TemporalMarkers.SerializedSize() > markers.HardSizeLimit {
		return nil, RolloutDecision{Reason: "markers over size cap"}
	}
	return ua.TemporalMarkers, RolloutDecision{
		MarkersIncluded: true,
		Reason:          "markers within budget",
	}
}
