package analysis

import "time"

// Severity grades an alert by how far below the threshold the score fell.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Alert records a sentiment score crossing below the configured threshold.
type Alert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message,omitempty"`
	Severity  Severity  `json:"severity"`
}
