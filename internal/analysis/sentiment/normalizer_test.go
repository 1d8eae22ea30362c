package sentiment

import "testing"

func TestScorePositiveFullConfidence(t *testing.T) {
	score := Score(LabelPositive, map[string]float64{LabelPositive: 1.0})
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
}

func TestScorePositiveRange(t *testing.T) {
	for _, mass := range []float64{0, 0.1, 0.25, 0.5, 0.73, 0.99, 1} {
		score := Score(LabelPositive, map[string]float64{LabelPositive: mass})
		if score < 50 || score > 100 {
			t.Fatalf("positive score out of range for mass %f: %d", mass, score)
		}
	}
}

func TestScoreNegative(t *testing.T) {
	score := Score(LabelNegative, map[string]float64{LabelNegative: 0.8})
	if score != 10 {
		t.Fatalf("expected 10, got %d", score)
	}
}

func TestScoreNeutralSpread(t *testing.T) {
	score := Score(LabelNeutral, map[string]float64{
		LabelPositive: 0.6,
		LabelNegative: 0.1,
	})
	if score != 55 {
		t.Fatalf("expected 55, got %d", score)
	}
}

func TestScoreUnknownLabelTreatedAsNeutral(t *testing.T) {
	score := Score("mixed", map[string]float64{
		LabelPositive: 0.2,
		LabelNegative: 0.2,
	})
	if score != 50 {
		t.Fatalf("expected 50, got %d", score)
	}
}

func TestExplainConfidenceTiers(t *testing.T) {
	strong := Explain(LabelPositive, 0.9)
	moderate := Explain(LabelPositive, 0.6)
	weak := Explain(LabelPositive, 0.3)

	if strong != "general satisfaction and positive engagement" {
		t.Fatalf("unexpected strong explanation: %q", strong)
	}
	if moderate != "overall positive interaction" {
		t.Fatalf("unexpected moderate explanation: %q", moderate)
	}
	if weak != "favorable conversation tone" {
		t.Fatalf("unexpected weak explanation: %q", weak)
	}
}

func TestExplainBoundaryConfidence(t *testing.T) {
	// 0.7 and 0.5 are exclusive tier boundaries.
	if got := Explain(LabelNeutral, 0.7); got != "mixed or neutral conversation tone" {
		t.Fatalf("expected moderate tier at 0.7, got %q", got)
	}
	if got := Explain(LabelNeutral, 0.5); got != "neither strongly positive nor negative" {
		t.Fatalf("expected weak tier at 0.5, got %q", got)
	}
}

func TestNeutralBaseline(t *testing.T) {
	result := NeutralBaseline()
	if result.Label != LabelNeutral {
		t.Fatalf("expected neutral label, got %s", result.Label)
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %f", result.Confidence)
	}
	if result.Score != 50 {
		t.Fatalf("expected score 50, got %d", result.Score)
	}
	if result.Scores[LabelNeutral] != 0.34 {
		t.Fatalf("unexpected neutral mass: %f", result.Scores[LabelNeutral])
	}
}

func TestResolveReproducible(t *testing.T) {
	cls := NeutralBaseline().Classification
	first := Resolve(cls)
	second := Resolve(cls)
	if first.Score != second.Score || first.Explanation != second.Explanation {
		t.Fatal("resolve must be deterministic for the same classification")
	}
}
