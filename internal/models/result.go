package models

// Match is a single vector-index search hit. Score is the raw similarity
// reported by the index (higher is more similar); Boost and AdjustedScore
// are filled in by the re-ranker. Matches are ephemeral, created per query.
type Match struct {
	ID            string  `json:"id"`
	Score         float64 `json:"score"`
	SourceFile    string  `json:"source_file"`
	Page          *int    `json:"page,omitempty"`
	Text          string  `json:"text"`
	Boost         float64 `json:"boost,omitempty"`
	AdjustedScore float64 `json:"adjusted_score,omitempty"`
}

// Confidence is a coarse retrieval-quality label derived from mean raw similarity.
type Confidence string

const (
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)
