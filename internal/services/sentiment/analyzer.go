package sentiment

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Sentiment labels attached to analyzed headlines.
const (
	LabelVeryPositive = "VERY POSITIVE"
	LabelPositive     = "POSITIVE"
	LabelNeutral      = "NEUTRAL"
	LabelNegative     = "NEGATIVE"
	LabelVeryNegative = "VERY NEGATIVE"
)

// Polarity scores a piece of text in [-1, 1] using the VADER lexicon.
// Empty text is neutral.
func Polarity(text string) float64 {
	if text == "" {
		return 0
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound
}

// Label buckets a polarity score into a display label.
func Label(score float64) string {
	switch {
	case score > 0.3:
		return LabelVeryPositive
	case score > 0.1:
		return LabelPositive
	case score > -0.1:
		return LabelNeutral
	case score > -0.3:
		return LabelNegative
	default:
		return LabelVeryNegative
	}
}
