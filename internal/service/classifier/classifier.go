// Package classifier exposes the external classification capability behind
// a narrow interface and layers the engine's graceful-degradation rules on
// top of it.
package classifier

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/solenne/chatsense/backend/internal/analysis/emotion"
	"github.com/solenne/chatsense/backend/internal/analysis/sentiment"
	"github.com/solenne/chatsense/backend/internal/model/analysis"
)

// Classifier produces a probability distribution over a fixed label set for
// one text input.
type Classifier interface {
	Classify(ctx context.Context, text string) (analysis.Classification, error)
}

// Config controls the analysis service.
type Config struct {
	// Timeout bounds each classification call. Zero means no bound.
	Timeout time.Duration
}

// Service wraps the sentiment and emotion classifiers. Either may be nil;
// classification then degrades to the fixed baselines instead of failing.
type Service struct {
	sentiment Classifier
	emotion   Classifier
	timeout   time.Duration
}

// NewService wires the classifiers. A nil classifier is tolerated so the
// engine keeps answering when the external model is unavailable.
func NewService(sentimentClf, emotionClf Classifier, cfg Config) *Service {
	return &Service{
		sentiment: sentimentClf,
		emotion:   emotionClf,
		timeout:   cfg.Timeout,
	}
}

// AnalyzeSentiment classifies one text and derives the normalized result.
// Blank input bypasses the classifier entirely; classifier failure falls
// back to the neutral baseline rather than propagating.
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) analysis.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return sentiment.NeutralBaseline()
	}
	if s.sentiment == nil {
		return sentiment.NeutralBaseline()
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	cls, err := s.sentiment.Classify(ctx, text)
	if err != nil {
		log.Printf("[classifier] sentiment classification failed, using neutral baseline: %v", err)
		return sentiment.NeutralBaseline()
	}
	return sentiment.Resolve(cls)
}

// AnalyzeStatements classifies each text independently, in order.
func (s *Service) AnalyzeStatements(ctx context.Context, texts []string) []analysis.SentimentResult {
	results := make([]analysis.SentimentResult, 0, len(texts))
	for _, text := range texts {
		results = append(results, s.AnalyzeSentiment(ctx, text))
	}
	return results
}

// AnalyzeConversation classifies the conversation as one unit of text.
func (s *Service) AnalyzeConversation(ctx context.Context, conversationText string) analysis.SentimentResult {
	return s.AnalyzeSentiment(ctx, conversationText)
}

// AnalyzeEmotion classifies one text over the emotion label set. Blank input
// yields the flat baseline; an unavailable or failing classifier yields the
// all-zero distribution.
func (s *Service) AnalyzeEmotion(ctx context.Context, text string) analysis.Classification {
	if s.emotion == nil {
		return emotion.Unavailable()
	}
	if strings.TrimSpace(text) == "" {
		return emotion.BlankBaseline()
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	cls, err := s.emotion.Classify(ctx, text)
	if err != nil {
		log.Printf("[classifier] emotion classification failed, using zero distribution: %v", err)
		return emotion.Unavailable()
	}
	return cls
}

// AnalyzeEmotions classifies each text independently, in order.
func (s *Service) AnalyzeEmotions(ctx context.Context, texts []string) []analysis.Classification {
	results := make([]analysis.Classification, 0, len(texts))
	for _, text := range texts {
		results = append(results, s.AnalyzeEmotion(ctx, text))
	}
	return results
}

// EmotionSummary averages per-message emotion distributions.
func (s *Service) EmotionSummary(results []analysis.Classification) map[string]float64 {
	return emotion.Aggregate(results)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
