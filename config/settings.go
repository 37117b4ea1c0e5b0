// Package config centralizes pipeline configuration, loaded from environment
// variables with defaults. Settings is an explicit value passed through the
// orchestrator; there are no process-wide mutable flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

// Timeouts per analysis type, in seconds. The visual overlay analysis
// historically needs the largest budget.
var defaultTimeouts = map[string]int{
	"creative_density":        60,
	"emotional_journey":       90,
	"person_framing":          60,
	"scene_pacing":            60,
	"speech_analysis":         90,
	"visual_overlay_analysis": 120,
	"metadata_analysis":       60,
}

// ViralWeights mirrors the calibrated scoring constants so deployments can
// recalibrate without a code change.
type ViralWeights struct {
	Engagement float64 `json:"engagement"`
	Hook       float64 `json:"hook"`
	Hashtag    float64 `json:"hashtag"`
}

// ReadabilityWeights mirrors the readability score constants the same way.
type ReadabilityWeights struct {
	Area     float64 `json:"area"`
	Position float64 `json:"position"`
	Contrast float64 `json:"contrast"`
}

// Settings is the full pipeline configuration.
type Settings struct {
	// Credentials
	ClaudeAPIKey string `json:"-"`
	ApifyToken   string `json:"-"`

	// Model selection
	ClaudeModel   string `json:"claude_model"`
	UseSonnet     bool   `json:"use_claude_sonnet"`
	UsePrecompute bool   `json:"use_ml_precompute"`
	OutputFormat  string `json:"output_format_version"` // v1 or v2
	LLMProvider   string `json:"llm_provider"`          // claude or ollama

	// Paths
	OutputDir   string `json:"output_dir"`
	UnifiedDir  string `json:"unified_dir"`
	InsightsDir string `json:"insights_dir"`
	TemporalDir string `json:"temporal_dir"`
	ConfigDir   string `json:"config_dir"`

	// Processing
	MaxVideoDuration int            `json:"max_video_duration"`
	PromptDelay      time.Duration  `json:"prompt_delay"`
	PromptTimeouts   map[string]int `json:"prompt_timeouts"`

	// Feature flags
	TemporalMarkersEnabled bool `json:"temporal_markers_enabled"`
	StrictMode             bool `json:"strict_mode"`

	// Calibrated scoring constants
	Viral       ViralWeights       `json:"viral_weights"`
	Readability ReadabilityWeights `json:"readability_weights"`

	// Optional Postgres feature-vector store
	DatabaseURL string `json:"-"`
}

// Load builds Settings from the environment.
func Load() *Settings {
	s := &Settings{
		ClaudeAPIKey: os.Getenv("CLAUDE_API_KEY"),
		ApifyToken:   os.Getenv("APIFY_API_TOKEN"),

		ClaudeModel:   envOr("CLAUDE_MODEL", "claude-3-haiku-20240307"),
		UseSonnet:     envBool("USE_CLAUDE_SONNET", false),
		UsePrecompute: envBool("USE_ML_PRECOMPUTE", true),
		OutputFormat:  envOr("OUTPUT_FORMAT_VERSION", "v2"),
		LLMProvider:   envOr("RUMIAI_LLM_PROVIDER", "claude"),

		OutputDir:   envOr("RUMIAI_OUTPUT_DIR", "outputs"),
		UnifiedDir:  envOr("RUMIAI_UNIFIED_DIR", "unified_analysis"),
		InsightsDir: envOr("RUMIAI_INSIGHTS_DIR", "insights"),
		TemporalDir: envOr("RUMIAI_TEMPORAL_DIR", "temporal_markers"),
		ConfigDir:   envOr("RUMIAI_CONFIG_DIR", "config"),

		MaxVideoDuration: envInt("MAX_VIDEO_DURATION", 180),
		PromptDelay:      time.Duration(envInt("PROMPT_DELAY", 5)) * time.Second,
		PromptTimeouts:   loadTimeouts(),

		TemporalMarkersEnabled: envBool("RUMIAI_TEMPORAL_MARKERS", true),
		StrictMode:             envBool("RUMIAI_STRICT_MODE", false),

		Viral: ViralWeights{
			Engagement: envFloat("RUMIAI_VIRAL_W_ENGAGEMENT", 0.5),
			Hook:       envFloat("RUMIAI_VIRAL_W_HOOK", 0.3),
			Hashtag:    envFloat("RUMIAI_VIRAL_W_HASHTAG", 0.2),
		},
		Readability: ReadabilityWeights{
			Area:     envFloat("RUMIAI_READABILITY_W_AREA", 0.5),
			Position: envFloat("RUMIAI_READABILITY_W_POSITION", 0.3),
			Contrast: envFloat("RUMIAI_READABILITY_W_CONTRAST", 0.2),
		},

		DatabaseURL: os.Getenv("RUMIAI_DATABASE_URL"),
	}

	if s.UseSonnet {
		s.ClaudeModel = envOr("CLAUDE_MODEL", "claude-3-5-sonnet-20241022")
	}
	return s
}

// Validate reports configuration errors. Missing credentials are fatal only
// when the Claude provider is selected.
func (s *Settings) Validate() error {
	if s.LLMProvider == "claude" && s.ClaudeAPIKey == "" {
		return fmt.Errorf("CLAUDE_API_KEY environment variable not set")
	}
	if s.OutputFormat != "v1" && s.OutputFormat != "v2" {
		return fmt.Errorf("OUTPUT_FORMAT_VERSION must be v1 or v2, got %q", s.OutputFormat)
	}
	for _, dir := range []string{s.OutputDir, s.UnifiedDir, s.InsightsDir, s.TemporalDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	return nil
}

// Timeout returns the per-analysis prompt timeout.
func (s *Settings) Timeout(analysisType string) time.Duration {
	if t, ok := s.PromptTimeouts[analysisType]; ok && t > 0 {
		return time.Duration(t) * time.Second
	}
	return 60 * time.Second
}

// PromptOverrides loads prompt template overrides from config/prompts.json
// when present.
func (s *Settings) PromptOverrides() map[string]string {
	path := filepath.Join(s.ConfigDir, "prompts.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		logging.Warn("ignoring malformed prompts.json", logging.Fields{"error": err.Error()})
		return nil
	}
	logging.Info("loaded prompt overrides", logging.Fields{"count": len(overrides)})
	return overrides
}

func loadTimeouts() map[string]int {
	out := make(map[string]int, len(defaultTimeouts))
	for k, v := range defaultTimeouts {
		out[k] = v
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("invalid boolean env var", logging.Fields{"key": key, "value": v})
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn("invalid integer env var", logging.Fields{"key": key, "value": v})
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logging.Warn("invalid float env var", logging.Fields{"key": key, "value": v})
		return def
	}
	return f
}
