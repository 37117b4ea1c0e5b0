package precompute

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/lexicon"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// ViralWeights are the calibrated constants behind viral_potential_score.
// They are configurable, not derived: the score is a heuristic blend.
type ViralWeights struct {
	Engagement float64 `json:"engagement"`
	Hook       float64 `json:"hook"`
	Hashtag    float64 `json:"hashtag"`
}

// DefaultViralWeights is the calibrated default blend.
var DefaultViralWeights = ViralWeights{Engagement: 0.5, Hook: 0.3, Hashtag: 0.2}

// MetadataExtractor derives publishing and caption features from the video
// metadata and engagement counters.
type MetadataExtractor struct {
	Weights ViralWeights
}

func (m *MetadataExtractor) AnalysisType() string { return AnalysisMetadata }

var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_.]+`)
)

func (m *MetadataExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	weights := m.Weights
	if weights == (ViralWeights{}) {
		weights = DefaultViralWeights
	}

	caption := meta.Description
	words := strings.Fields(caption)

	hashtags := hashtagPattern.FindAllString(caption, -1)
	mentions := mentionPattern.FindAllString(caption, -1)
	emojiCount := countEmoji(caption)

	engagementRate := 0.0
	if meta.Stats.Views > 0 {
		engagementRate = float64(meta.Stats.Likes+meta.Stats.Comments+
			meta.Stats.Shares+meta.Stats.Saves) / float64(meta.Stats.Views)
	}

	publishHour := meta.CreatedAt.Hour()
	publishDay := meta.CreatedAt.Weekday().String()

	hashtagStrategy := "minimal"
	switch n := len(hashtags); {
	case n > 15:
		hashtagStrategy = "spam"
	case n >= 8:
		hashtagStrategy = "heavy"
	case n >= 3:
		hashtagStrategy = "moderate"
	}

	captionStyle := classifyCaptionStyle(caption, words)
	urgency := lexicon.UrgencyLevel(caption)

	hookStrength := hookStrength(caption, tl)
	hashtagRelevance := hashtagRelevance(hashtags, caption)
	viralScore := weights.Engagement*stats.Clamp01(engagementRate*10) +
		weights.Hook*hookStrength +
		weights.Hashtag*hashtagRelevance

	formula := classifyViralFormula(caption, tl)

	return FeatureBundle{
		"caption_length":        len(caption),
		"caption_word_count":    len(words),
		"hashtag_count":         len(hashtags),
		"hashtags":              hashtags,
		"mention_count":         len(mentions),
		"mentions":              mentions,
		"emoji_count":           emojiCount,
		"engagement_rate":       stats.RoundTo(engagementRate, 5),
		"publish_hour":          publishHour,
		"publish_day_of_week":   publishDay,
		"hashtag_strategy":      hashtagStrategy,
		"caption_style":         captionStyle,
		"urgency_level":         urgency,
		"viral_formula":         formula,
		"viral_potential_score": stats.RoundTo(stats.Clamp01(viralScore), 3),
		"view_count":            meta.Stats.Views,
		"like_count":            meta.Stats.Likes,
		"data_completeness":     1.0,
		"confidence":            0.95,
	}, nil
}

func countEmoji(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x1F000 || unicode.Is(unicode.So, r) {
			n++
		}
	}
	return n
}

func classifyCaptionStyle(caption string, words []string) string {
	if len(words) == 0 {
		return "minimal"
	}
	sentences := strings.FieldsFunc(caption, func(r rune) bool {
		return r == '.' || r == '!' || r == '\n'
	})
	switch {
	case strings.Contains(caption, "?"):
		return "question"
	case strings.Count(caption, "\n") >= 2 || strings.Count(caption, "•") >= 2:
		return "list"
	case len(sentences) >= 3 && len(words) >= 25:
		return "storytelling"
	case len(words) <= 5:
		return "minimal"
	default:
		return "direct"
	}
}

// hookStrength blends a caption hook match with the opening density of the
// timeline.
func hookStrength(caption string, tl *timeline.Timeline) float64 {
	score := 0.0
	if lexicon.MatchAny(caption, lexicon.Hook) {
		score += 0.5
	}
	opening := 0
	for i := 0; i < 3; i++ {
		opening += tl.CountInSecond(i)
	}
	score += stats.Clamp01(float64(opening) / 10)
	return stats.Clamp01(score)
}

// hashtagRelevance scores how many hashtags echo caption vocabulary rather
// than ride generic discovery tags.
func hashtagRelevance(hashtags []string, caption string) float64 {
	if len(hashtags) == 0 {
		return 0
	}
	body := strings.ToLower(hashtagPattern.ReplaceAllString(caption, ""))
	relevant := 0
	for _, h := range hashtags {
		tag := strings.ToLower(strings.TrimPrefix(h, "#"))
		if len(tag) > 3 && strings.Contains(body, tag) {
			relevant++
		}
	}
	return float64(relevant) / float64(len(hashtags))
}

func classifyViralFormula(caption string, tl *timeline.Timeline) string {
	lower := strings.ToLower(caption)
	switch {
	case lexicon.MatchAny(lower, lexicon.Hook):
		return "hook_payoff"
	case strings.Contains(lower, "how to") || strings.Contains(lower, "tutorial") ||
		strings.Contains(lower, "step"):
		return "tutorial"
	case strings.Contains(lower, "challenge"):
		return "challenge"
	case strings.Contains(lower, "story") || strings.Contains(lower, "storytime"):
		return "story_arc"
	case strings.Contains(lower, "react") || strings.Contains(lower, "pov"):
		return "reaction"
	}
	// A heavily front-loaded timeline without caption signals still reads as
	// hook-driven
	first, _, last := stats.ThirdSums(stats.IntsToFloats(
		stats.PerSecondCounts(allStartTimes(tl), tl.Duration())))
	if first > 2*last && first > 0 {
		return "hook_payoff"
	}
	return "other"
}

func allStartTimes(tl *timeline.Timeline) []float64 {
	entries := tl.Entries()
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Start.Seconds())
	}
	return out
}
