// Package sentiment converts raw classifier probability distributions into
// the engine's bounded sentiment representation.
package sentiment

import "github.com/solenne/chatsense/backend/internal/model/analysis"

// Sentiment labels produced by the external classifier.
const (
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelPositive = "positive"
)

// Labels is the fixed sentiment label set, in classifier order.
var Labels = []string{LabelNegative, LabelNeutral, LabelPositive}

// Score projects a classification distribution onto the 0-100 scale.
// Positive maps onto [50,100] weighted by the positive mass, negative onto
// [0,50] weighted by the negative mass, and anything else hovers around 50
// nudged by the positive/negative spread. Fractions are truncated toward
// zero, matching plain integer conversion.
func Score(label string, scores map[string]float64) int {
	switch label {
	case LabelPositive:
		return int(50 + scores[LabelPositive]*50)
	case LabelNegative:
		return int(50 - scores[LabelNegative]*50)
	default:
		base := int(50 + (scores[LabelPositive]-scores[LabelNegative])*10)
		return clamp(base, 0, 100)
	}
}

var explanations = map[string][]string{
	LabelPositive: {
		"general satisfaction and positive engagement",
		"overall positive interaction",
		"favorable conversation tone",
		"positive user experience",
	},
	LabelNegative: {
		"general dissatisfaction",
		"overall negative interaction",
		"unfavorable conversation tone",
		"user concerns or complaints",
	},
	LabelNeutral: {
		"neutral or balanced interaction",
		"mixed or neutral conversation tone",
		"neither strongly positive nor negative",
	},
}

// Explain selects the explanation wording for a label by confidence tier:
// above 0.7 the strong variant, above 0.5 the moderate one, otherwise the
// weak one (falling back to strong when a label has no weak wording).
func Explain(label string, confidence float64) string {
	variants, ok := explanations[label]
	if !ok {
		variants = explanations[LabelNeutral]
	}

	switch {
	case confidence > 0.7:
		return variants[0]
	case confidence > 0.5:
		return variants[1]
	default:
		if len(variants) > 2 {
			return variants[2]
		}
		return variants[0]
	}
}

// NeutralBaseline is the fixed result for degenerate input (blank text) and
// for classifier failure. Score is always 50.
func NeutralBaseline() analysis.SentimentResult {
	cls := analysis.Classification{
		Label:      LabelNeutral,
		Confidence: 0.0,
		Scores: map[string]float64{
			LabelNegative: 0.33,
			LabelNeutral:  0.34,
			LabelPositive: 0.33,
		},
	}
	return Resolve(cls)
}

// Resolve derives the full sentiment result from a raw classification.
func Resolve(cls analysis.Classification) analysis.SentimentResult {
	return analysis.SentimentResult{
		Classification: cls,
		Score:          Score(cls.Label, cls.Scores),
		Explanation:    Explain(cls.Label, cls.Confidence),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
