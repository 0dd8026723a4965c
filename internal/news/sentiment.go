package news

import "strings"

// Word lists tuned for financial headline vocabulary. Scoring is a
// plain lexicon count: no negation handling, no stemming. Headlines
// are short enough that this stays serviceable.
var (
	positiveWords = map[string]struct{}{
		"gains": {}, "gain": {}, "rally": {}, "rallies": {}, "surge": {},
		"surges": {}, "soars": {}, "soar": {}, "rise": {}, "rises": {},
		"climbs": {}, "climb": {}, "strong": {}, "strength": {},
		"strengthens": {}, "boost": {}, "boosts": {}, "growth": {},
		"optimism": {}, "optimistic": {}, "recovery": {}, "recovers": {},
		"rebound": {}, "rebounds": {}, "bullish": {}, "upbeat": {},
		"improves": {}, "improvement": {}, "steady": {}, "stabilizes": {},
	}
	negativeWords = map[string]struct{}{
		"falls": {}, "fall": {}, "drops": {}, "drop": {}, "decline": {},
		"declines": {}, "plunge": {}, "plunges": {}, "tumble": {},
		"tumbles": {}, "slump": {}, "slumps": {}, "slides": {}, "slide": {},
		"weak": {}, "weakness": {}, "weakens": {}, "crisis": {},
		"fears": {}, "fear": {}, "worries": {}, "worry": {},
		"recession": {}, "bearish": {}, "uncertainty": {}, "turmoil": {},
		"losses": {}, "loss": {}, "pressure": {}, "struggles": {},
	}
)

const wordWeight = 0.25

// Sentiment scores a headline in [-1, 1]. Each positive word adds
// wordWeight, each negative word subtracts it; the sum is clamped.
// Text with no scored words is neutral.
func Sentiment(text string) float64 {
	var score float64
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,;:!?'\"()")
		if _, ok := positiveWords[word]; ok {
			score += wordWeight
		} else if _, ok := negativeWords[word]; ok {
			score -= wordWeight
		}
	}
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
