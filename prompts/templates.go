// Package prompts assembles the per-analysis prompt text and context payload
// handed to the LLM capability, holding compact serialization under the
// payload size budget.
package prompts

import "github.com/TumiLabsJN/rumiai-go/precompute"

// blockInstruction is appended to every template so the response always
// carries the six canonical blocks.
const blockInstruction = `

Respond with a single JSON object containing exactly these six blocks:
CoreMetrics, Dynamics, Interactions, KeyEvents, Patterns, Quality.
Each block must be a JSON object and include a numeric "confidence" between 0 and 1.`

var defaultTemplates = map[string]string{
	precompute.AnalysisCreativeDensity: `Analyze the creative density and visual complexity of this TikTok video.
Focus on:
1. Text overlay frequency and positioning
2. Visual effects and transitions
3. Information density over time
4. Creative element patterns

Provide insights on how the creative elements contribute to viewer engagement.`,

	precompute.AnalysisEmotionalJourney: `Analyze the emotional journey and narrative arc of this TikTok video.
Focus on:
1. Emotional progression throughout the video
2. Key emotional peaks and valleys
3. How visuals, speech, and music create emotional impact
4. Viewer emotional engagement patterns

Provide insights on the emotional storytelling techniques used.`,

	precompute.AnalysisSpeech: `Analyze the speech patterns and verbal content of this TikTok video.
Focus on:
1. Speaking pace and rhythm
2. Key topics and themes
3. Verbal hooks and memorable phrases
4. Speech-to-action synchronization

Provide insights on how speech contributes to the video's effectiveness.`,

	precompute.AnalysisVisualOverlay: `Analyze the visual overlay strategy and text placement in this TikTok video.
Focus on:
1. Text timing and duration
2. Visual hierarchy and readability
3. Text-to-action coordination
4. Information delivery patterns

Provide insights on the visual communication strategy.`,

	precompute.AnalysisMetadata: `Analyze how the video's metadata (caption, hashtags) aligns with its content.
Focus on:
1. Hashtag relevance to content
2. Caption effectiveness
3. SEO optimization
4. Discoverability factors

Provide insights on metadata optimization opportunities.`,

	precompute.AnalysisPersonFraming: `Analyze the person framing and human presence in this TikTok video.
Focus on:
1. Screen time and positioning
2. Eye contact and engagement
3. Body language and gestures
4. Person-to-content balance

Provide insights on how human presence affects viewer connection.`,

	precompute.AnalysisScenePacing: `Analyze the scene pacing and visual rhythm of this TikTok video.
Focus on:
1. Cut frequency and timing
2. Scene duration patterns
3. Visual flow and transitions
4. Pacing impact on retention

Provide insights on the video's editing rhythm and viewer attention management.`,
}

// Template returns the prompt text for an analysis type, preferring an
// override when one is configured.
func Template(analysisType string, overrides map[string]string) string {
	if overrides != nil {
		if t, ok := overrides[analysisType]; ok && t != "" {
			return t + blockInstruction
		}
	}
	if t, ok := defaultTemplates[analysisType]; ok {
		return t + blockInstruction
	}
	return "Analyze this video." + blockInstruction
}
