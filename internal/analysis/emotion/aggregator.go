// Package emotion summarizes per-message emotion distributions into
// conversation-level views.
package emotion

import "github.com/solenne/chatsense/backend/internal/model/analysis"

// DefaultLabels is the emotion label set used when the classifier does not
// supply its own ordering.
var DefaultLabels = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral"}

// Aggregate averages each label's probability across all results. Labels are
// averaged independently; the output is not renormalized to sum to 1. An
// empty input yields every default label mapped to 0.
func Aggregate(results []analysis.Classification) map[string]float64 {
	summary := make(map[string]float64, len(DefaultLabels))
	for _, label := range DefaultLabels {
		summary[label] = 0.0
	}

	if len(results) == 0 {
		return summary
	}

	for _, result := range results {
		for label, score := range result.Scores {
			summary[label] += score
		}
	}

	count := float64(len(results))
	for label, total := range summary {
		summary[label] = total / count
	}
	return summary
}

// Unavailable is the summary exposed when the emotion classifier could not
// be reached at all: the default label set with all-zero scores.
func Unavailable() analysis.Classification {
	scores := make(map[string]float64, len(DefaultLabels))
	for _, label := range DefaultLabels {
		scores[label] = 0.0
	}
	return analysis.Classification{Label: "neutral", Confidence: 0.0, Scores: scores}
}

// BlankBaseline is the result for blank input: a flat distribution rather
// than a model call.
func BlankBaseline() analysis.Classification {
	scores := make(map[string]float64, len(DefaultLabels))
	for _, label := range DefaultLabels {
		scores[label] = 0.14
	}
	return analysis.Classification{Label: "neutral", Confidence: 0.0, Scores: scores}
}
