package emotion

import (
	"testing"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
)

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)
	if len(summary) != len(DefaultLabels) {
		t.Fatalf("expected %d labels, got %d", len(DefaultLabels), len(summary))
	}
	for label, score := range summary {
		if score != 0.0 {
			t.Fatalf("expected 0 for %s, got %f", label, score)
		}
	}
}

func TestAggregateMean(t *testing.T) {
	results := []analysis.Classification{
		{Label: "joy", Scores: map[string]float64{"joy": 0.8, "sadness": 0.1}},
		{Label: "neutral", Scores: map[string]float64{"joy": 0.2, "sadness": 0.3}},
	}

	summary := Aggregate(results)
	if summary["joy"] != 0.5 {
		t.Fatalf("expected joy mean 0.5, got %f", summary["joy"])
	}
	if summary["sadness"] != 0.2 {
		t.Fatalf("expected sadness mean 0.2, got %f", summary["sadness"])
	}
	if summary["anger"] != 0.0 {
		t.Fatalf("expected anger 0, got %f", summary["anger"])
	}
}

func TestUnavailableAllZero(t *testing.T) {
	result := Unavailable()
	if result.Label != "neutral" || result.Confidence != 0 {
		t.Fatalf("unexpected fallback result: %+v", result)
	}
	for label, score := range result.Scores {
		if score != 0.0 {
			t.Fatalf("expected 0 for %s, got %f", label, score)
		}
	}
}

func TestBlankBaselineFlat(t *testing.T) {
	result := BlankBaseline()
	for label, score := range result.Scores {
		if score != 0.14 {
			t.Fatalf("expected 0.14 for %s, got %f", label, score)
		}
	}
}
