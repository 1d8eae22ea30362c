package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
)

// LLMClassifier prompts a chat model to emit a probability distribution
// over a fixed label set as JSON.
type LLMClassifier struct {
	labels []string
	chain  compose.Runnable[map[string]any, *schema.Message]
}

const classifierSystemPrompt = "You are a strict %s classifier. Read the text and respond with exactly one JSON object, no other output. Fields: label (one of: %s), confidence (probability of the chosen label, between 0 and 1), scores (an object mapping every allowed label to its probability; the probabilities must sum to 1)."

const classifierUserPrompt = "Text to classify:\n{text}"

// NewLLMClassifier compiles a classification chain over the supplied chat
// model. task names the classification job in the prompt ("sentiment",
// "emotion").
func NewLLMClassifier(ctx context.Context, chatModel model.ChatModel, task string, labels []string) (*LLMClassifier, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label set is required")
	}

	system := fmt.Sprintf(classifierSystemPrompt, task, strings.Join(labels, ", "))
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s classifier chain: %w", task, err)
	}

	return &LLMClassifier{
		labels: append([]string(nil), labels...),
		chain:  runnable,
	}, nil
}

// Classify runs the chain and parses the model output into a distribution.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (analysis.Classification, error) {
	msg, err := c.chain.Invoke(ctx, map[string]any{"text": text})
	if err != nil {
		return analysis.Classification{}, fmt.Errorf("classifier invoke failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return analysis.Classification{}, fmt.Errorf("classifier returned empty output")
	}

	payload, err := parseDistribution(msg.Content)
	if err != nil {
		return analysis.Classification{}, fmt.Errorf("classifier output parse failed: %w", err)
	}
	return c.normalize(payload)
}

type distributionPayload struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// parseDistribution extracts the first JSON object from the model reply.
func parseDistribution(content string) (*distributionPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &distributionPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// normalize validates the payload against the label set and fills gaps so
// downstream projections always see a complete distribution.
func (c *LLMClassifier) normalize(payload *distributionPayload) (analysis.Classification, error) {
	label := strings.ToLower(strings.TrimSpace(payload.Label))
	if !c.allowed(label) {
		return analysis.Classification{}, fmt.Errorf("label %q outside label set", payload.Label)
	}

	scores := make(map[string]float64, len(c.labels))
	for _, known := range c.labels {
		scores[known] = clampUnit(payload.Scores[known])
	}

	confidence := clampUnit(payload.Confidence)
	if confidence == 0 {
		confidence = scores[label]
	}

	return analysis.Classification{
		Label:      label,
		Confidence: confidence,
		Scores:     scores,
	}, nil
}

func (c *LLMClassifier) allowed(label string) bool {
	for _, known := range c.labels {
		if known == label {
			return true
		}
	}
	return false
}

func clampUnit(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}
