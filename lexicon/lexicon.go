// Package lexicon carries the fixed phrase lists the pipeline matches
// against speech transcripts and on-screen text: calls to action, hooks,
// filler words and urgency markers.
package lexicon

import "strings"

// CTA phrases, matched case-insensitively as substrings.
var CTA = []string{
	"follow", "like", "comment", "share", "subscribe", "tap", "click",
	"swipe", "hit the", "don't forget to", "make sure to", "check out",
	"link in bio", "dm me", "tag",
}

// Hook phrases that open strong in the first seconds.
var Hook = []string{
	"wait for it", "watch this", "you won't believe", "check this out",
	"stay tuned", "here's what happened", "this is crazy", "no way",
}

// Filler words, matched as whole tokens.
var Filler = []string{
	"um", "uh", "like", "you know", "basically", "literally", "so",
}

// Urgency phrase tiers.
var (
	UrgencyHigh   = []string{"now", "today", "last chance", "ends soon"}
	UrgencyMedium = []string{"limited", "don't miss", "hurry"}
	UrgencyLow    = []string{"soon", "coming"}
)

// Product and social-proof buckets used for text semantic grouping.
var (
	ProductMentions = []string{"buy", "price", "shop", "order", "product", "deal", "sale", "$"}
	SocialProof     = []string{"viral", "everyone", "sold out", "reviews", "5 star", "trending", "million"}
)

// MatchAny reports whether text contains any phrase from the list,
// case-insensitively.
func MatchAny(text string, phrases []string) bool {
	return FirstMatch(text, phrases) != ""
}

// FirstMatch returns the first phrase from the list contained in text, or
// the empty string.
func FirstMatch(text string, phrases []string) string {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// Matches returns every phrase from the list contained in text.
func Matches(text string, phrases []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			out = append(out, p)
		}
	}
	return out
}

// CountTokens counts whole-token occurrences of the listed words in text.
// Multi-word phrases count via substring match.
func CountTokens(text string, words []string) int {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	count := 0
	for _, w := range words {
		if strings.Contains(w, " ") {
			count += strings.Count(lower, w)
			continue
		}
		for _, tok := range tokens {
			if tok == w {
				count++
			}
		}
	}
	return count
}

// UrgencyLevel scores text as high, medium, low or none.
func UrgencyLevel(text string) string {
	switch {
	case MatchAny(text, UrgencyHigh):
		return "high"
	case MatchAny(text, UrgencyMedium):
		return "medium"
	case MatchAny(text, UrgencyLow):
		return "low"
	default:
		return "none"
	}
}
