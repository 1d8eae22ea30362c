package analysis

// Classification is the raw output of an external classifier for one text
// input: the winning label, its probability mass, and the full distribution
// over the classifier's label set. The engine only derives values from it.
type Classification struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// SentimentResult augments a sentiment classification with the normalized
// 0-100 score and a human-readable explanation. The score is a pure
// projection of the classification and is never persisted on its own.
type SentimentResult struct {
	Classification
	Score       int    `json:"score"`
	Explanation string `json:"explanation,omitempty"`
}
