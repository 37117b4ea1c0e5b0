// Package validate parses and normalizes the six-block JSON structure every
// LLM analysis must return. The validator never fails: malformed input
// yields an empty result with all blocks listed missing.
package validate

import (
	"encoding/json"
	"strings"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

// CanonicalBlocks is the fixed block set of every analysis response.
var CanonicalBlocks = []string{
	"CoreMetrics", "Dynamics", "Interactions", "KeyEvents", "Patterns", "Quality",
}

// legacyPrefixes maps historical per-analysis prefixed block names onto the
// canonical names, e.g. densityCoreMetrics -> CoreMetrics.
var legacyPrefixes = []string{
	"density", "emotional", "speech", "overlay", "metadata", "framing", "pacing",
	"creativeDensity", "emotionalJourney", "speechAnalysis", "visualOverlay",
	"metadataAnalysis", "personFraming", "scenePacing",
}

const defaultConfidence = 0.5

// Result is the validator's verdict on one response.
type Result struct {
	BlocksPresent []string       `json:"blocks_present"`
	BlocksMissing []string       `json:"blocks_missing"`
	Data          map[string]any `json:"data"`
	ParseError    string         `json:"parse_error,omitempty"`
	Warnings      int            `json:"warnings,omitempty"`
}

// Validate extracts, parses and normalizes the response text. For any input
// it returns without error; input with no balanced braces yields empty data
// with all six blocks missing.
func Validate(responseText string) Result {
	logger := logging.WithFields(logging.Fields{"component": "response_validator"})

	result := Result{
		BlocksPresent: []string{},
		BlocksMissing: []string{},
		Data:          map[string]any{},
	}

	raw := extractBalancedObject(responseText)
	if raw == "" {
		result.ParseError = "no balanced JSON object in response"
		result.BlocksMissing = append(result.BlocksMissing, CanonicalBlocks...)
		logger.Warn("response contained no JSON object")
		return result
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		result.ParseError = err.Error()
		result.BlocksMissing = append(result.BlocksMissing, CanonicalBlocks...)
		logger.Warn("response JSON failed to parse", logging.Fields{"error": err.Error()})
		return result
	}

	remapped := remapLegacyNames(parsed)

	for _, block := range CanonicalBlocks {
		value, ok := remapped[block]
		if !ok {
			result.BlocksMissing = append(result.BlocksMissing, block)
			continue
		}
		blockObj, ok := value.(map[string]any)
		if !ok {
			result.BlocksMissing = append(result.BlocksMissing, block)
			logger.Warn("block is not an object", logging.Fields{"block": block})
			result.Warnings++
			continue
		}
		if normalizeConfidence(blockObj) {
			result.Warnings++
			logger.Warn("block confidence clamped or defaulted",
				logging.Fields{"block": block})
		}
		result.Data[block] = blockObj
		result.BlocksPresent = append(result.BlocksPresent, block)
	}

	if len(result.BlocksMissing) > 0 {
		logger.Warn("response missing blocks",
			logging.Fields{"missing": strings.Join(result.BlocksMissing, ",")})
	}
	return result
}

// extractBalancedObject returns the largest balanced {...} substring,
// respecting JSON string quoting.
func extractBalancedObject(s string) string {
	bestStart, bestEnd := -1, -1
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				if bestStart < 0 || i-start > bestEnd-bestStart {
					bestStart, bestEnd = start, i
				}
			}
		}
	}
	if bestStart < 0 {
		return ""
	}
	return s[bestStart : bestEnd+1]
}

// remapLegacyNames renames historical prefixed blocks onto the canonical
// names. Canonical names win when both are present.
func remapLegacyNames(parsed map[string]any) map[string]any {
	out := make(map[string]any, len(parsed))
	for k, v := range parsed {
		out[k] = v
	}
	for _, block := range CanonicalBlocks {
		if _, ok := out[block]; ok {
			continue
		}
		for _, prefix := range legacyPrefixes {
			legacy := prefix + block
			if v, ok := out[legacy]; ok {
				out[block] = v
				delete(out, legacy)
				break
			}
		}
	}
	return out
}

// normalizeConfidence ensures the block carries a numeric confidence in
// [0,1], clamping or defaulting as needed. Reports whether a correction was
// applied.
func normalizeConfidence(block map[string]any) bool {
	v, ok := block["confidence"]
	if !ok {
		block["confidence"] = defaultConfidence
		return true
	}
	c, ok := v.(float64)
	if !ok {
		block["confidence"] = defaultConfidence
		return true
	}
	switch {
	case c < 0:
		block["confidence"] = 0.0
		return true
	case c > 1:
		block["confidence"] = 1.0
		return true
	}
	return false
}
