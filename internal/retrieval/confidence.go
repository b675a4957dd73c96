package retrieval

import "github.com/hyperjump/horitsu/internal/models"

// Confidence thresholds over mean raw similarity. Bands are inclusive at
// their lower bound.
const (
	highThreshold   = 0.8
	mediumThreshold = 0.6
	lowThreshold    = 0.4
)

// AssessConfidence classifies retrieval quality from the arithmetic mean of
// raw similarity scores (never the adjusted scores). An empty match set is
// very_low.
func AssessConfidence(matches []models.Match) models.Confidence {
	if len(matches) == 0 {
		return models.ConfidenceVeryLow
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	mean := sum / float64(len(matches))
	switch {
	case mean >= highThreshold:
		return models.ConfidenceHigh
	case mean >= mediumThreshold:
		return models.ConfidenceMedium
	case mean >= lowThreshold:
		return models.ConfidenceLow
	default:
		return models.ConfidenceVeryLow
	}
}
