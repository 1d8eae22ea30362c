package classifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
	classifierservice "github.com/solenne/chatsense/backend/internal/service/classifier"
)

// stubClassifier returns a fixed classification or error so the
// degradation paths can be exercised without a model.
type stubClassifier struct {
	result analysis.Classification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (analysis.Classification, error) {
	s.calls++
	if s.err != nil {
		return analysis.Classification{}, s.err
	}
	return s.result, nil
}

func TestAnalyzeSentimentResolvesScore(t *testing.T) {
	stub := &stubClassifier{result: analysis.Classification{
		Label:      "negative",
		Confidence: 0.8,
		Scores:     map[string]float64{"negative": 0.8, "neutral": 0.15, "positive": 0.05},
	}}
	svc := classifierservice.NewService(stub, nil, classifierservice.Config{})

	result := svc.AnalyzeSentiment(context.Background(), "this product is awful")
	if result.Score != 10 {
		t.Fatalf("expected score 10, got %d", result.Score)
	}
	if result.Explanation != "general dissatisfaction" {
		t.Fatalf("unexpected explanation: %q", result.Explanation)
	}
}

func TestAnalyzeSentimentBlankBypassesClassifier(t *testing.T) {
	stub := &stubClassifier{}
	svc := classifierservice.NewService(stub, nil, classifierservice.Config{})

	result := svc.AnalyzeSentiment(context.Background(), "   \t ")
	if result.Label != "neutral" || result.Score != 50 {
		t.Fatalf("expected neutral baseline, got %+v", result)
	}
	if stub.calls != 0 {
		t.Fatal("blank input must not reach the classifier")
	}
}

func TestAnalyzeSentimentFailureFallsBack(t *testing.T) {
	stub := &stubClassifier{err: errors.New("model unavailable")}
	svc := classifierservice.NewService(stub, nil, classifierservice.Config{})

	result := svc.AnalyzeSentiment(context.Background(), "anything")
	if result.Label != "neutral" || result.Score != 50 {
		t.Fatalf("expected neutral baseline on failure, got %+v", result)
	}
}

func TestAnalyzeSentimentNilClassifier(t *testing.T) {
	svc := classifierservice.NewService(nil, nil, classifierservice.Config{})
	result := svc.AnalyzeSentiment(context.Background(), "anything")
	if result.Label != "neutral" || result.Score != 50 {
		t.Fatalf("expected neutral baseline without classifier, got %+v", result)
	}
}

func TestAnalyzeEmotionUnavailable(t *testing.T) {
	svc := classifierservice.NewService(nil, nil, classifierservice.Config{})
	result := svc.AnalyzeEmotion(context.Background(), "I am furious")
	for label, score := range result.Scores {
		if score != 0.0 {
			t.Fatalf("expected zero score for %s, got %f", label, score)
		}
	}
}

func TestAnalyzeEmotionBlankBaseline(t *testing.T) {
	stub := &stubClassifier{}
	svc := classifierservice.NewService(nil, stub, classifierservice.Config{})

	result := svc.AnalyzeEmotion(context.Background(), "")
	if result.Scores["joy"] != 0.14 {
		t.Fatalf("expected flat baseline, got %+v", result.Scores)
	}
	if stub.calls != 0 {
		t.Fatal("blank input must not reach the classifier")
	}
}

func TestAnalyzeStatementsKeepsOrder(t *testing.T) {
	stub := &stubClassifier{result: analysis.Classification{
		Label:      "positive",
		Confidence: 0.9,
		Scores:     map[string]float64{"positive": 0.9, "neutral": 0.05, "negative": 0.05},
	}}
	svc := classifierservice.NewService(stub, nil, classifierservice.Config{})

	results := svc.AnalyzeStatements(context.Background(), []string{"great", "", "love it"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Score != 95 || results[2].Score != 95 {
		t.Fatalf("unexpected scores: %d, %d", results[0].Score, results[2].Score)
	}
	if results[1].Score != 50 {
		t.Fatalf("blank statement should score 50, got %d", results[1].Score)
	}
}

func TestEmotionSummaryDelegatesToAggregate(t *testing.T) {
	svc := classifierservice.NewService(nil, nil, classifierservice.Config{})
	summary := svc.EmotionSummary([]analysis.Classification{
		{Scores: map[string]float64{"joy": 0.8}},
		{Scores: map[string]float64{"joy": 0.2}},
	})
	if summary["joy"] != 0.5 {
		t.Fatalf("expected joy mean 0.5, got %f", summary["joy"])
	}
}
