// Package ai generates assistant replies through the configured chat model.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/solenne/chatsense/backend/internal/config"
	"github.com/solenne/chatsense/backend/internal/model/conversation"
)

const systemPrompt = "You are a helpful, empathetic conversational assistant. Answer the user's question directly and keep a warm, natural tone. When the user is upset, acknowledge their frustration before helping."

const summaryPrompt = "You are a conversation analyst. Summarize the conversation transcript you are given in one short paragraph: the main topics, the user's overall mood, and how it developed. Be concise and factual."

// Service encapsulates AI-powered reply generation.
type Service struct {
	chatModel    model.ChatModel
	cfg          config.AIConfig
	chain        compose.Runnable[map[string]any, *schema.Message]
	summaryChain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the generation service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	summaryTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(summaryPrompt),
		schema.UserMessage("{conversation}"),
	)

	summaryChain := compose.NewChain[map[string]any, *schema.Message]()
	summaryChain.AppendChatTemplate(summaryTemplate)
	summaryChain.AppendChatModel(chatModel)

	summaryRunnable, err := summaryChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary chain: %w", err)
	}

	return &Service{
		chatModel:    chatModel,
		cfg:          cfg,
		chain:        runnable,
		summaryChain: summaryRunnable,
	}, nil
}

// StreamingEnabled indicates whether SSE streaming output is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateReply produces one assistant reply for the conversation so far.
// The prior turns are passed as model history; the new user message as the
// query.
func (s *Service) GenerateReply(ctx context.Context, history []conversation.Message, userMessage string) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, userMessage))
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// StreamReply streams reply chunks via the configured chain.
func (s *Service) StreamReply(ctx context.Context, history []conversation.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(history, userMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to stream chat chain output: %w", err)
	}
	return stream, nil
}

// Summarize produces a short natural-language summary of the conversation.
func (s *Service) Summarize(ctx context.Context, history []conversation.Message) (string, error) {
	response, err := s.summaryChain.Invoke(ctx, map[string]any{
		"conversation": renderTranscript(history),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run summary chain: %w", err)
	}

	log.Printf("[ai] generated summary, length=%d", len(response.Content))
	return response.Content, nil
}

// GetChatModel exposes the underlying model so classifiers can reuse it.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

func (s *Service) buildChainInput(history []conversation.Message, userMessage string) map[string]any {
	return map[string]any{
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
}

// renderTranscript flattens a conversation into "role: content" lines for
// the summary prompt.
func renderTranscript(messages []conversation.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func buildHistoryMessages(messages []conversation.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case conversation.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case conversation.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
