// Package export renders session history plus analysis results into the
// machine-readable and document report forms.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
	"github.com/solenne/chatsense/backend/internal/model/conversation"
)

// Version identifies the snapshot schema.
const Version = "1.0"

// Cell content budget for the report table.
const contentBudget = 100

// Analysis bundles the optional analysis attached to an export.
type Analysis struct {
	Overall        *analysis.SentimentResult  `json:"overall_sentiment,omitempty"`
	Statements     []analysis.SentimentResult `json:"statement_sentiments,omitempty"`
	EmotionSummary map[string]float64         `json:"emotion_summary,omitempty"`
}

type metadata struct {
	ExportDate time.Time `json:"export_date"`
	Version    string    `json:"version"`
}

type snapshot struct {
	Metadata     metadata               `json:"metadata"`
	Conversation []conversation.Message `json:"conversation"`
	Analysis     *Analysis              `json:"analysis"`
}

// Snapshot produces the structured JSON export: metadata, the full
// conversation, and whatever analysis was supplied.
func Snapshot(history []conversation.Message, results *Analysis) ([]byte, error) {
	if history == nil {
		history = []conversation.Message{}
	}
	doc := snapshot{
		Metadata:     metadata{ExportDate: time.Now().UTC(), Version: Version},
		Conversation: history,
		Analysis:     results,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export snapshot: %w", err)
	}
	return data, nil
}

// CSV renders one row per message. Sentiment results are matched
// positionally against user messages; assistant rows and user rows beyond
// the supplied results carry N/A placeholders. Supplying fewer results than
// user messages is expected, not an error.
func CSV(history []conversation.Message, sentiments []analysis.SentimentResult) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Message Number", "Role", "Message", "Sentiment", "Score", "Confidence"}); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	userIndex := 0
	for i, msg := range history {
		row := []string{fmt.Sprintf("%d", i+1), string(msg.Role), msg.Content}
		if msg.Role == conversation.RoleUser && userIndex < len(sentiments) {
			sent := sentiments[userIndex]
			row = append(row,
				sent.Label,
				fmt.Sprintf("%d", sent.Score),
				fmt.Sprintf("%.2f%%", sent.Confidence*100),
			)
			userIndex++
		} else {
			row = append(row, "N/A", "N/A", "N/A")
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.String(), nil
}

// Report renders the document form: a header block, an optional overall
// analysis section, and the same rows as the CSV with message content
// truncated for layout stability.
func Report(history []conversation.Message, overall *analysis.SentimentResult, sentiments []analysis.SentimentResult) string {
	var b strings.Builder

	b.WriteString("Conversation Analysis Report\n")
	b.WriteString("============================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	if overall != nil {
		b.WriteString("Overall Analysis\n")
		b.WriteString("----------------\n")
		fmt.Fprintf(&b, "Sentiment: %s\n", capitalize(overall.Label))
		fmt.Fprintf(&b, "Score: %d/100\n", overall.Score)
		fmt.Fprintf(&b, "Confidence: %.1f%%\n", overall.Confidence*100)
		if overall.Explanation != "" {
			fmt.Fprintf(&b, "Summary: %s\n", overall.Explanation)
		}
		b.WriteString("\n")
	}

	b.WriteString("Conversation History\n")
	b.WriteString("--------------------\n")
	fmt.Fprintf(&b, "%-4s %-10s %-104s %-10s %s\n", "#", "Role", "Message", "Sentiment", "Score")

	userIndex := 0
	for i, msg := range history {
		sentiment, score := "-", "-"
		if msg.Role == conversation.RoleUser && userIndex < len(sentiments) {
			sent := sentiments[userIndex]
			sentiment = capitalize(sent.Label)
			score = fmt.Sprintf("%d", sent.Score)
			userIndex++
		}
		fmt.Fprintf(&b, "%-4d %-10s %-104s %-10s %s\n",
			i+1, capitalize(string(msg.Role)), truncate(msg.Content, contentBudget), sentiment, score)
	}

	return b.String()
}

func truncate(content string, budget int) string {
	runes := []rune(content)
	if len(runes) <= budget {
		return content
	}
	return string(runes[:budget]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
